package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/jumpmat/pkg/export"
	"github.com/matzehuels/jumpmat/pkg/layout"
	"github.com/matzehuels/jumpmat/pkg/report"
)

// specCommand creates the spec command, which prints the printable text
// specification of a mat without drawing it.
func (c *CLI) specCommand() *cobra.Command {
	var (
		cfgFlags configFlags
		output   string
	)

	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Print the text specification of a mat",
		Long:  `Print the dimensions, zones, graduations, labels, marker placements, colors and tolerance of a mat as plain text, for print shops and calibration notes.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cfgFlags.load()
			if err != nil {
				return err
			}
			plan, err := layout.NewPlan(cfg)
			if err != nil {
				return err
			}
			if output == "" {
				return report.Write(cmd.OutOrStdout(), plan)
			}
			if err := export.Save(output, []byte(report.String(plan))); err != nil {
				return err
			}
			printSuccess("Wrote specification")
			printFile(output)
			return nil
		},
	}

	cfgFlags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	return cmd
}
