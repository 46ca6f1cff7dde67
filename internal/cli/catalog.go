package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"valcal/internal/model"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "templates",
		Short: "List the available templates",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if formatFlag == "json" {
				printJSON(model.Templates)
				return
			}
			for i, t := range model.Templates {
				def := ""
				if i == 0 {
					def = " (default)"
				}
				fmt.Printf("%-16s %s%s: %s\n", t.ID, t.Name, def, t.Description)
			}
		},
	})

	RootCmd.AddCommand(&cobra.Command{
		Use:   "timezones",
		Short: "List the suggested recipient timezones",
		Long:  "List the suggested timezones. Any IANA zone id is accepted by --tz.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if formatFlag == "json" {
				printJSON(model.Timezones)
				return
			}
			for _, z := range model.Timezones {
				fmt.Printf("%-32s %s\n", z.ID, z.Label)
			}
		},
	})
}
