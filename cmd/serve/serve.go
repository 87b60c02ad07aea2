package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/datanorm/internal/app"
	"github.com/tphakala/datanorm/internal/conf"
	"github.com/tphakala/datanorm/internal/httpcontroller"
	"github.com/tphakala/datanorm/internal/logger"
)

// Command creates the serve command, which runs the web server until it
// receives SIGINT or SIGTERM.
func Command(appCtx *app.Context) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  "Serve the normalization form, the JSON API and, when enabled, Prometheus metrics.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				appCtx.Settings.WebServer.Port = port
			}
			return run(cmd.Context(), appCtx)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", conf.DefaultPort, "Port for the web server")

	return cmd
}

func run(ctx context.Context, appCtx *app.Context) error {
	if err := appCtx.OpenStore(); err != nil {
		return err
	}

	server, err := httpcontroller.New(appCtx.Settings, appCtx.Recorder, appCtx.Metrics, appCtx.Logger("web"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := appCtx.Logger("main")
	log.Info("datanorm started",
		logger.String("name", appCtx.Settings.Main.Name),
		logger.String("version", appCtx.Settings.Version),
		logger.String("address", appCtx.Settings.ListenAddress()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpcontroller.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", logger.Error(err))
		return err
	}
	log.Info("datanorm stopped")
	return nil
}
