package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/spliceai-lookup/internal/server"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the /spliceai/ and /liftover/ HTTP endpoints",
		Example: `  spliceai-lookup serve
  spliceai-lookup serve --port 9000
  PORT=9000 spliceai-lookup serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), viper.GetViper())
		},
	}

	cmd.Flags().String("address", "", "listen address (default from server.address)")
	cmd.Flags().Int("port", 0, "listen port (default from server.port)")
	viper.BindPFlag("server.address", cmd.Flags().Lookup("address"))
	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

func runServe(ctx context.Context, v *viper.Viper) error {
	logger, err := newLogger(v)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cache, err := openScoreCache(v, logger)
	if err != nil {
		return err
	}
	defer cache.Close()

	srv := server.New(newResolver(v, cache, logger), newTransformer(v, logger), server.Config{
		MaxDistance:      v.GetInt("scoring.max_distance"),
		QuietRemoteAddrs: v.GetStringSlice("server.quiet_remote_addrs"),
		Version:          version,
	})
	srv.SetLogger(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := net.JoinHostPort(v.GetString("server.address"), v.GetString("server.port"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}
