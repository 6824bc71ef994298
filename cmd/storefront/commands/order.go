package commands

import (
	"fmt"
	"time"

	"mumsale-backend/lib/configutil"
	"mumsale-backend/lib/sheetsapi"
	"mumsale-backend/services/storefront"

	"github.com/spf13/cobra"
)

func init() {
	orderCmd.AddCommand(orderSubmitCmd)
	orderCmd.AddCommand(orderLastCmd)
	rootCmd.AddCommand(orderCmd)
}

type orderConfig struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
}

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Submits the cart as an order, or shows the last submitted one.",
}

var paymentMethod *string
var comments *string

func init() {
	paymentMethod = orderSubmitCmd.Flags().String("payment", "zelle", "How the order will be paid for.")
	comments = orderSubmitCmd.Flags().String("comments", "", "Free-form note for the organizers.")
}

var orderSubmitCmd = &cobra.Command{
	Use:   "submit [--payment <method>] [--comments <note>]",
	Short: "Submits the current cart using the contact info in order.json5.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[orderConfig]("order.json5")
		if err != nil {
			fatal("failed to read order.json5", err)
		}

		service, cleanup := openService(cmd.Context())
		defer cleanup()

		checkout := service.NewCheckout()
		err = checkout.BeginOrder()
		if err != nil {
			fatal("cannot start checkout", err)
		}

		confirmation, err := checkout.Submit(cmd.Context(), storefront.CustomerInfo{
			FirstName: cfg.FirstName,
			LastName:  cfg.LastName,
			Email:     cfg.Email,
			Phone:     cfg.Phone,
			Address: sheetsapi.Address{
				Street: cfg.Street,
				City:   cfg.City,
				State:  cfg.State,
				Zip:    cfg.Zip,
			},
		}, *paymentMethod, *comments)
		if err != nil {
			fatal("failed to submit order", err)
		}

		if confirmation.TestOrder {
			fmt.Println("Test order, nothing was recorded on the backend.")
		}
		fmt.Printf("Order %s confirmed, total $%.2f paid by %s.\n",
			confirmation.OrderID, confirmation.Total, confirmation.PaymentMethod)
	},
}

var orderLastCmd = &cobra.Command{
	Use:   "last",
	Short: "Shows the most recently confirmed order.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cleanup := openService(cmd.Context())
		defer cleanup()

		record, err := service.LastOrder(cmd.Context())
		if err != nil {
			fatal("no order on record", err)
		}
		fmt.Printf("Order %s on %s, total $%.2f.\n",
			record.OrderID, record.Date.Format(time.ANSIC), record.Total)
	},
}
