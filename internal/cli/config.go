package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jumpmat/pkg/config"
	"github.com/matzehuels/jumpmat/pkg/export"
	"github.com/matzehuels/jumpmat/pkg/layout"
)

// configCommand creates the config command for managing mat files.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or inspect mat configuration files",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())

	return cmd
}

// configInitCommand creates the "config init" subcommand, which writes the
// reference mat as a starting point for a custom one.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write the reference mat configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "mat.toml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			var b strings.Builder
			if err := config.Reference().Encode(&b); err != nil {
				return err
			}
			if err := export.Save(path, []byte(b.String())); err != nil {
				return err
			}
			printSuccess("Wrote reference mat")
			printFile(path)
			printNextStep("Render it", "jumpmat render -c "+path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

// configShowCommand creates the "config show" subcommand. It prints the
// effective configuration after defaults and flag overrides, either as a
// summary or as TOML.
func (c *CLI) configShowCommand() *cobra.Command {
	var (
		cfgFlags configFlags
		asTOML   bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective mat configuration",
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
			if asTOML {
				return plan.Config.Encode(cmd.OutOrStdout())
			}
			showConfig(cmd, plan)
			return nil
		},
	}

	cfgFlags.register(cmd)
	cmd.Flags().BoolVar(&asTOML, "toml", false, "print as TOML")

	return cmd
}

func showConfig(cmd *cobra.Command, plan *layout.Plan) {
	cfg := plan.Config
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, StyleTitle.Render("Mat"))
	fmt.Fprintln(out, renderTable([]string{"Property", "Value"}, [][]string{
		{"Length", fmt.Sprintf("%.3f m + %.3f m takeoff", cfg.TotalLength, cfg.LeadingOffset)},
		{"Width", fmt.Sprintf("%.3f m", cfg.TotalWidth)},
		{"Raster", fmt.Sprintf("%d x %d px at %g px/m", plan.Width, plan.Height, cfg.PixelsPerMeter)},
		{"Labels", string(cfg.Labels.Strategy)},
		{"Markers", strconv.Itoa(len(plan.Placements))},
	}))

	zones := make([][]string, 0, len(cfg.Zones))
	for _, z := range cfg.Zones {
		zones = append(zones, []string{z.Name, string(z.Role),
			fmt.Sprintf("%.2f m", z.Start), fmt.Sprintf("%.2f m", z.End)})
	}
	fmt.Fprintln(out, StyleTitle.Render("Zones"))
	fmt.Fprintln(out, renderTable([]string{"Name", "Role", "Start", "End"}, zones))

	tiers := make([][]string, 0, len(cfg.Tiers))
	for _, t := range cfg.Tiers {
		tiers = append(tiers, []string{t.Name, fmt.Sprintf("%d cm", t.SpacingCM()),
			fmt.Sprintf("%.0f mm", t.LineLength*1000), strings.Join(t.Zones, ", ")})
	}
	fmt.Fprintln(out, StyleTitle.Render("Tiers"))
	fmt.Fprintln(out, renderTable([]string{"Name", "Spacing", "Length", "Zones"}, tiers))
}
