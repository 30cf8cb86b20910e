package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"livetsstemme/internal/api"
	"livetsstemme/internal/jobs"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(rt *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "🌐 Start HTTP API-et",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), rt)
		},
	}
	cmd.Flags().String("addr", "", "listen address")
	_ = rt.v.BindPFlag("http.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func serve(ctx context.Context, rt *state) error {
	n, err := rt.open(ctx)
	if err != nil {
		return err
	}
	cfg := rt.cfg

	server := api.New(api.Options{
		Nest:           n,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		MaxUploadBytes: cfg.Audio.MaxUploadMB << 20,
		CloneRate:      cfg.HTTP.CloneRate,
		CloneBurst:     cfg.HTTP.CloneBurst,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})

	scheduler := jobs.New()
	if err := scheduler.Add("purge-expired", cfg.Jobs.PurgeSchedule, func(ctx context.Context) error {
		_, err := n.PurgeExpired(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := scheduler.Add("rate-limit-cleanup", "@every 10m", func(context.Context) error {
		server.Limiter().Cleanup()
		return nil
	}); err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithFields(logrus.Fields{
			"addr":  cfg.HTTP.Addr,
			"store": cfg.Store.Driver,
		}).Info("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return scheduler.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logrus.Info("Shutting down HTTP server")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
