package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-lightstream/internal/app"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

var settingsJSON bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect or reset persisted settings",
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, _, closeStore, err := openRegistry()
		if err != nil {
			return err
		}
		defer closeStore()

		var recs []settings.Record
		for _, s := range reg.All() {
			rec, err := settings.ToRecord(s)
			if err != nil {
				return err
			}
			recs = append(recs, rec)
		}
		if settingsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(recs)
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tKIND\tCATEGORY\tVALUE")
		for _, r := range recs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Kind, r.Category, recordValue(r))
		}
		return tw.Flush()
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every persisted setting",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, key, closeStore, err := openRegistry()
		if err != nil {
			return err
		}
		defer closeStore()
		n := reg.Len()
		reg.Clear()
		if err := reg.Save(key); err != nil {
			return err
		}
		fmt.Printf("removed %d settings\n", n)
		return nil
	},
}

func init() {
	settingsListCmd.Flags().BoolVar(&settingsJSON, "json", false, "print as JSON")
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsResetCmd)
}

func openRegistry() (*settings.Registry, string, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", nil, err
	}
	st, closer, err := app.OpenStore(cfg.Store)
	if err != nil {
		return nil, "", nil, err
	}
	reg := settings.New(st)
	reg.Load(cfg.Store.Key)
	return reg, cfg.Store.Key, func() {
		if closer != nil {
			closer.Close()
		}
	}, nil
}

func recordValue(r settings.Record) string {
	switch r.Kind {
	case settings.KindBool:
		return fmt.Sprint(r.Bool)
	case settings.KindInt, settings.KindFloat:
		return fmt.Sprintf("%g (%g..%g)", r.Number, r.Min, r.Max)
	case settings.KindSelection:
		return r.Selected
	case settings.KindColor:
		return r.Color
	default:
		return r.Object
	}
}
