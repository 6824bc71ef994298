package commands

import (
	"fmt"
	"sort"
	"strings"

	"mumsale-backend/services/storefront"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(settingsCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Lists the products currently for sale and their color variants.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cleanup := openService(cmd.Context())
		defer cleanup()

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Product", "Price", "Colors", "Description"})
		for _, p := range service.Products() {
			t.AppendRow(table.Row{
				p.ID,
				p.Title,
				fmt.Sprintf("$%.2f", p.Price),
				strings.Join(storefront.ColorsFor(p.ID), ", "),
				p.Description,
			})
		}
		t.Render()
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Shows the storefront settings published by the organizers.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cleanup := openService(cmd.Context())
		defer cleanup()

		settings := service.Settings(cmd.Context())

		keys := make([]string, 0, len(settings))
		for key := range settings {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		t := newTable()
		t.AppendHeader(table.Row{"Setting", "Value"})
		for _, key := range keys {
			t.AppendRow(table.Row{key, settings[key]})
		}
		t.Render()
	},
}
