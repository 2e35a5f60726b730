package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jumpmat/pkg/buildinfo"
	"github.com/matzehuels/jumpmat/pkg/cache"
	"github.com/matzehuels/jumpmat/pkg/config"
	"github.com/matzehuels/jumpmat/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "jumpmat"

	// envRedisURL names the environment variable holding a shared cache URL.
	envRedisURL = "JUMPMAT_REDIS_URL"

	// redisKeyPrefix scopes keys in a shared Redis database.
	redisKeyPrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	// Out receives command output; defaults to os.Stdout.
	Out io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose, quiet bool

	root := &cobra.Command{
		Use:           appName,
		Short:         "Jumpmat renders precision jump-distance calibration mats",
		Long:          `Jumpmat renders printable calibration mats for measuring jump distances: metric graduations, tiered precision ticks and fiducial markers for camera calibration, exported as images, a textured plane mesh and a text specification.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case verbose:
				c.SetLogLevel(LogDebug)
			case quiet:
				c.SetLogLevel(log.WarnLevel)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Out)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().BoolVar(&quiet, "quiet", false, "only log warnings and errors")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.specCommand())
	root.AddCommand(c.markersCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool, redisURL string) (*pipeline.Runner, error) {
	cc, keyer, err := c.newCache(ctx, noCache, redisURL)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

// newCache selects the cache backend: none, Redis when a URL is given, or
// the file cache under the user cache directory.
func (c *CLI) newCache(ctx context.Context, noCache bool, redisURL string) (cache.Cache, cache.Keyer, error) {
	if noCache {
		return cache.Disabled("--no-cache"), nil, nil
	}
	if redisURL == "" {
		redisURL = os.Getenv(envRedisURL)
	}
	if redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, redisURL)
		if err != nil {
			return nil, nil, err
		}
		c.Logger.Debug("using redis cache")
		return rc, cache.NewScopedKeyer(nil, redisKeyPrefix), nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.Disabled("no cache directory"), nil, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cannot create cache directory, caching disabled", "dir", dir, "err", err)
		return cache.Disabled("cannot create " + dir), nil, nil
	}
	return fc, nil, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/jumpmat/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Config Helpers
// =============================================================================

// configFlags are the mat options shared by commands that build a mat.
type configFlags struct {
	path           string
	pixelsPerMeter float64
	labels         string
}

func (f *configFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.path, "config", "c", "", "mat configuration file (TOML); default is the reference mat")
	cmd.Flags().Float64Var(&f.pixelsPerMeter, "ppm", 0, "override pixels per meter")
	cmd.Flags().StringVar(&f.labels, "labels", "", "override label strategy: rotated, inline")
}

// load reads the configuration file, or the reference mat when none is
// given, and applies flag overrides.
func (f *configFlags) load() (config.MetricConfig, error) {
	cfg := config.Reference()
	if f.path != "" {
		var err error
		if cfg, err = config.Load(f.path); err != nil {
			return config.MetricConfig{}, err
		}
	}
	if f.pixelsPerMeter != 0 {
		cfg.PixelsPerMeter = f.pixelsPerMeter
	}
	if f.labels != "" {
		cfg.Labels.Strategy = config.LabelStrategy(f.labels)
	}
	return cfg, nil
}
