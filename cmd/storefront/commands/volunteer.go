package commands

import (
	"fmt"

	"mumsale-backend/lib/sheetsapi"

	"github.com/spf13/cobra"
)

var volunteerName *string
var volunteerEmail *string
var volunteerPhone *string
var volunteerAvailability *string

func init() {
	volunteerName = volunteerCmd.Flags().String("name", "", "Your name.")
	volunteerEmail = volunteerCmd.Flags().String("email", "", "Your email address.")
	volunteerPhone = volunteerCmd.Flags().String("phone", "", "Your phone number.")
	volunteerAvailability = volunteerCmd.Flags().String("availability", "", "When you can help out.")
	rootCmd.AddCommand(volunteerCmd)
}

var helperName *string
var helperEmail *string
var helperPhone *string

func init() {
	helperName = helperCmd.Flags().String("name", "", "Your name.")
	helperEmail = helperCmd.Flags().String("email", "", "Your email address.")
	helperPhone = helperCmd.Flags().String("phone", "", "Your phone number.")
	rootCmd.AddCommand(helperCmd)
}

var helperCmd = &cobra.Command{
	Use:   "help-me --name <name> [--email <email>] [--phone <phone>]",
	Short: "Asks an organizer to call you and take your order directly.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cleanup := openService(cmd.Context())
		defer cleanup()

		result, err := service.RequestHelp(cmd.Context(), sheetsapi.HelperContact{
			Name:  *helperName,
			Email: *helperEmail,
			Phone: *helperPhone,
		})
		if err != nil {
			fatal("failed to submit help request", err)
		}
		if result.Message != "" {
			fmt.Println(result.Message)
		} else {
			fmt.Println("An organizer will reach out shortly.")
		}
	},
}

var volunteerCmd = &cobra.Command{
	Use:   "volunteer --name <name> --email <email> [--phone <phone>] [--availability <when>]",
	Short: "Signs you up to help with the sale.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cleanup := openService(cmd.Context())
		defer cleanup()

		result, err := service.SubmitVolunteer(cmd.Context(), sheetsapi.VolunteerSubmission{
			Name:         *volunteerName,
			Email:        *volunteerEmail,
			Phone:        *volunteerPhone,
			Availability: *volunteerAvailability,
		})
		if err != nil {
			fatal("failed to submit volunteer interest", err)
		}
		if result.Message != "" {
			fmt.Println(result.Message)
		} else {
			fmt.Println("Thank you for volunteering!")
		}
	},
}
