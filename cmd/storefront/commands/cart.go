package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	cartCmd.AddCommand(cartSetCmd)
	cartCmd.AddCommand(cartAdjustCmd)
	cartCmd.AddCommand(cartDonateCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)
	rootCmd.AddCommand(cartCmd)
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Shows the cart. Subcommands modify it.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cleanup := openService(cmd.Context())
		defer cleanup()

		lines := service.Lines()
		if len(lines) == 0 {
			fmt.Println("The cart is empty.")
			return
		}

		t := newTable()
		t.AppendHeader(table.Row{"#", "Product", "Color", "Price", "Qty", "Subtotal"})
		for i, l := range lines {
			color := l.Color
			if l.IsDonation {
				color = "-"
			}
			t.AppendRow(table.Row{
				i,
				l.Title,
				color,
				fmt.Sprintf("$%.2f", l.Price),
				l.Quantity,
				fmt.Sprintf("$%.2f", l.Price*float64(l.Quantity)),
			})
		}
		t.AppendFooter(table.Row{"", "", "", "", "Total", fmt.Sprintf("$%.2f", service.Total())})
		t.Render()
	},
}

var cartSetCmd = &cobra.Command{
	Use:   "set <product id> <color> <quantity>",
	Short: "Sets the quantity for a product and color. 0 removes the line.",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		service, cleanup := openService(cmd.Context())
		defer cleanup()

		quantity, err := strconv.Atoi(args[2])
		if err != nil {
			fatal("quantity must be a number", err)
		}

		applied, err := service.SetLineQuantity(cmd.Context(), args[0], args[1], quantity)
		if err != nil {
			fatal("failed to update cart", err)
		}
		if applied != quantity {
			fmt.Printf("Quantity adjusted to %d.\n", applied)
		}
		fmt.Printf("Cart total: $%.2f\n", service.Total())
	},
}

var cartAdjustCmd = &cobra.Command{
	Use:   "adjust <product id> <color> <delta>",
	Short: "Adds a positive or negative delta to a line's quantity.",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		service, cleanup := openService(cmd.Context())
		defer cleanup()

		delta, err := strconv.Atoi(args[2])
		if err != nil {
			fatal("delta must be a number", err)
		}

		displayed := 0
		for _, l := range service.Lines() {
			if !l.IsDonation && l.ProductID == args[0] && l.Color == args[1] {
				displayed = l.Quantity
				break
			}
		}

		applied, err := service.AdjustLineQuantity(cmd.Context(), args[0], args[1], displayed, delta)
		if err != nil {
			fatal("failed to update cart", err)
		}
		fmt.Printf("Quantity is now %d, cart total $%.2f.\n", applied, service.Total())
	},
}

var cartDonateCmd = &cobra.Command{
	Use:   "donate <amount> [title...]",
	Short: "Adds a flat donation line to the cart.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service, cleanup := openService(cmd.Context())
		defer cleanup()

		amount, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			fatal("amount must be a number", err)
		}

		err = service.AddDonation(cmd.Context(), strings.Join(args[1:], " "), amount)
		if err != nil {
			fatal("failed to add donation", err)
		}
		fmt.Printf("Cart total: $%.2f\n", service.Total())
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <line number>",
	Short: "Removes a cart line by the number shown in `cart`.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service, cleanup := openService(cmd.Context())
		defer cleanup()

		index, err := strconv.Atoi(args[0])
		if err != nil {
			fatal("line number must be a number", err)
		}
		err = service.RemoveLine(cmd.Context(), index)
		if err != nil {
			fatal("failed to remove line", err)
		}
		fmt.Printf("Cart total: $%.2f\n", service.Total())
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empties the cart.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cleanup := openService(cmd.Context())
		defer cleanup()

		err := service.ClearCart(cmd.Context())
		if err != nil {
			fatal("failed to clear cart", err)
		}
	},
}
