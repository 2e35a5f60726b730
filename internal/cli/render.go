package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jumpmat/pkg/cache"
	"github.com/matzehuels/jumpmat/pkg/export"
	"github.com/matzehuels/jumpmat/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	config   configFlags
	output   string // output base path; each format appends its extension
	formats  string // comma-separated output formats
	quality  int    // JPEG quality
	speckle  bool   // draw the speckle layer
	seed     uint64 // speckle seed, 0 for a fresh random pattern
	refresh  bool   // ignore cached artifacts
	noCache  bool   // disable the cache entirely
	redisURL string // shared cache
}

// renderCommand creates the render command for generating mat artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		output:  pipeline.DefaultName,
		speckle: true,
	}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a calibration mat",
		Long: `Render a calibration mat to one or more artifacts.

Each format is written next to the output base path with its own extension,
so "-o out/mat -f png,obj,mtl" writes out/mat.png, out/mat.obj and out/mat.mtl.
The OBJ references the MTL, which references the PNG texture by that name.`,
		Example: `  jumpmat render
  jumpmat render -f png,txt,json -o prints/mat
  jumpmat render -c mat.toml --ppm 600 --no-speckle
  jumpmat render -f jpeg -q 85 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), &opts)
		},
	}

	opts.config.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output base path")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): "+strings.Join(pipeline.FormatNames(), ", ")+" (comma-separated, default png)")
	cmd.Flags().IntVarP(&opts.quality, "quality", "q", pipeline.DefaultQuality, "JPEG quality (1-100)")
	cmd.Flags().BoolVar(&opts.speckle, "speckle", opts.speckle, "draw the speckle texture layer")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "speckle seed (0 draws a new pattern each run)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if cached")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "Redis URL for a shared cache (or "+envRedisURL+")")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := opts.config.load()
	if err != nil {
		return err
	}
	formats, err := pipeline.ParseFormats(opts.formats)
	if err != nil {
		return err
	}

	base := basePath(opts.output)
	runner, err := c.newRunner(ctx, opts.noCache, opts.redisURL)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Config:  cfg,
		Formats: formats,
		Quality: opts.quality,
		Speckle: opts.speckle,
		Seed:    opts.seed,
		Name:    filepath.Base(base),
		Refresh: opts.refresh,
		Logger:  logger,
	}

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Rendering mat...")
	spinner.Start()
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		spinner.Stop()
		return err
	}
	spinner.SetMessage("Writing artifacts...")
	paths, err := writeArtifacts(base, formats, result.Artifacts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("rendered mat", "artifacts", len(paths), "cached", result.CacheInfo.Hits)

	printSuccess("Rendered %s", StyleHighlight.Render(base))
	printStats(result.Stats, result.CacheInfo)
	if result.Seed != 0 && opts.seed == 0 {
		printDetail("speckle seed %d (pass --seed %d to reproduce)", result.Seed, result.Seed)
	}
	if reason := cache.DisabledReason(runner.Cache); reason != "" {
		printDetail("cache off: %s", reason)
	}
	for _, p := range paths {
		printFile(p)
	}
	if px := 1 / result.Plan.Config.PixelsPerMeter; px > result.Plan.Config.Tolerance {
		printWarning("pixel size %.2f mm exceeds the %.2f mm tolerance", px*1000, result.Plan.Config.Tolerance*1000)
	}
	return nil
}

// writeArtifacts writes each artifact to base plus its format extension, in
// the order formats were requested, and returns the paths written.
func writeArtifacts(base string, formats []string, artifacts map[string][]byte) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := base + "." + artifactExt(format)
		if err := export.Save(path, artifacts[format]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// artifactExt returns the file extension for a pipeline format.
func artifactExt(format string) string {
	switch format {
	case pipeline.FormatPNG, pipeline.FormatJPEG, pipeline.FormatBMP, pipeline.FormatTIFF:
		return export.Format(format).Ext()
	}
	return format
}

// basePath strips a known format extension from output so "mat.png" and
// "mat" name the same set of files.
func basePath(output string) string {
	if output == "" {
		return pipeline.DefaultName
	}
	ext := filepath.Ext(output)
	if ext == "" {
		return output
	}
	if _, err := pipeline.ParseFormats(strings.TrimPrefix(ext, ".")); err == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
