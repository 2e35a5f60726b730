package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jumpmat/internal/server"
)

const (
	defaultAddr     = "localhost:8080"
	shutdownTimeout = 10 * time.Second
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	config   configFlags
	addr     string
	noCache  bool
	redisURL string
	logJSON  bool
}

// serveCommand creates the serve command, which renders artifacts on request.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: defaultAddr}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve mat artifacts over HTTP",
		Long: `Serve mat artifacts over HTTP.

Routes:
  GET /mat.{format}       png, jpg, bmp, tiff, obj, mtl, txt, json
  GET /spec.txt           text specification
  GET /manifest.json      marker manifest
  GET /markers/{id}.png   single fiducial (?size=&quiet= in pixels)
  GET /healthz            liveness

Query parameters ppm, labels, speckle, seed and quality override the
configuration per request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	opts.config.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "Redis URL for a shared cache (or "+envRedisURL+")")
	cmd.Flags().BoolVar(&opts.logJSON, "log-json", false, "log as JSON lines")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)
	if opts.logJSON {
		setJSON(logger)
	}

	cfg, err := opts.config.load()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.noCache, opts.redisURL)
	if err != nil {
		return err
	}
	defer runner.Close()

	ln, err := net.Listen("tcp", opts.addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           server.New(runner, cfg, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	printSuccess("Serving on %s", StyleHighlight.Render("http://"+ln.Addr().String()))
	printNextStep("Fetch the mat", "curl -O http://"+ln.Addr().String()+"/mat.png")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
