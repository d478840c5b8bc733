package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-lightstream/internal/app"
)

var effectsCmd = &cobra.Command{
	Use:   "effects",
	Short: "List built-in effects",
	Run: func(cmd *cobra.Command, args []string) {
		c := app.NewCatalog(nil)
		for _, name := range c.Names() {
			fmt.Printf("%-16s %s\n", name, c.Kind(name))
		}
	},
}
