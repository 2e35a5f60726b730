package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jumpmat/pkg/export"
	"github.com/matzehuels/jumpmat/pkg/fiducial"
	"github.com/matzehuels/jumpmat/pkg/layout"
	"github.com/matzehuels/jumpmat/pkg/pixelspace"
)

const (
	defaultMarkerPx = 600 // core side of a standalone marker image
	defaultQuietPx  = 100
)

// markersOpts holds the command-line flags for the markers command.
type markersOpts struct {
	config configFlags
	id     int
	size   int
	quiet  int
	output string
}

// markersCommand creates the markers command. Without --id it lists the
// placements of a mat; with --id it writes one marker as a PNG.
func (c *CLI) markersCommand() *cobra.Command {
	opts := markersOpts{id: -1, size: defaultMarkerPx, quiet: defaultQuietPx}

	cmd := &cobra.Command{
		Use:   "markers",
		Short: "List fiducial placements or export a single marker",
		Example: `  jumpmat markers
  jumpmat markers -c mat.toml
  jumpmat markers --id 8 --size 1200 -o marker-8.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("id") {
				return writeMarker(&opts)
			}
			return listMarkers(cmd, &opts)
		},
	}

	opts.config.register(cmd)
	cmd.Flags().IntVar(&opts.id, "id", opts.id, "write the marker with this dictionary ID")
	cmd.Flags().IntVar(&opts.size, "size", opts.size, "marker core size in pixels (with --id)")
	cmd.Flags().IntVar(&opts.quiet, "quiet", opts.quiet, "light quiet-zone width in pixels (with --id)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "marker image path (default marker-<id>.png)")

	return cmd
}

func listMarkers(cmd *cobra.Command, opts *markersOpts) error {
	cfg, err := opts.config.load()
	if err != nil {
		return err
	}
	plan, err := layout.NewPlan(cfg)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(plan.Placements))
	for _, p := range plan.Placements {
		x0 := pixelspace.Px(plan.Space.LongitudinalToColumn(p.Core.X0))
		y0 := pixelspace.Px(plan.Space.TransverseToRow(p.Core.Y0))
		rows = append(rows, []string{
			strconv.Itoa(p.ID),
			string(p.Side),
			fmt.Sprintf("%.3f m", p.Position),
			fmt.Sprintf("%d, %d", x0, y0),
			fmt.Sprintf("%d px", pixelspace.Px(plan.Space.ToPixels(p.Core.X1-p.Core.X0))),
			fiducial.Default.Lookup(p.ID).String(),
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"ID", "Side", "Position", "Core (px)", "Size", "Pattern"}, rows))
	return nil
}

func writeMarker(opts *markersOpts) error {
	if opts.size <= 0 {
		return fmt.Errorf("marker size must be positive, got %d", opts.size)
	}
	id := fiducial.Default.Normalize(opts.id)
	img := fiducial.Encode(id, opts.size, opts.quiet)
	data, err := export.Encode(img, export.FormatPNG, 0)
	if err != nil {
		return err
	}

	path := opts.output
	if path == "" {
		path = fmt.Sprintf("marker-%d.png", id)
	}
	if err := export.Save(path, data); err != nil {
		return err
	}
	printSuccess("Wrote marker %d", id)
	printFile(path)
	return nil
}
