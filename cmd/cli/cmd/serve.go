package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cleanquote/adapters/webhook"
	"cleanquote/api"
	"cleanquote/core/engine"
	"cleanquote/core/pricing"
	"cleanquote/internal/config"
	"cleanquote/internal/logging"
)

var (
	serveAddr    string
	serveCompany string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quote API",
	Long: `Serve the quote and pricing administration API.

On start the pricing state is restored from the configured storage backend.
When the backend is empty it is seeded from the HCL seed file, or from the
built-in defaults when there is no seed file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return Serve(ctx, cfg, serveCompany)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveCompany, "company", "CleanQuote", "company name printed on quote PDFs")
	rootCmd.AddCommand(serveCmd)
}

// Serve wires storage, store, engine and API and serves until ctx is done
func Serve(ctx context.Context, c *config.Config, company string) error {
	logger := logging.Named("serve")
	if c.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := api.NewMetrics()
	opts := []pricing.Option{pricing.WithPublishHook(metrics.ObservePublish)}

	if c.Webhook.URL != "" {
		provider, err := webhook.ParseProvider(c.Webhook.Provider)
		if err != nil {
			return err
		}
		wcfg := webhook.DefaultConfig(provider)
		wcfg.Endpoint = c.Webhook.URL
		wcfg.Secret = c.Webhook.Secret
		wcfg.RetryCount = c.Webhook.RetryCount
		hook := webhook.New(wcfg)
		go hook.Run(ctx)
		opts = append(opts, pricing.WithPublishHook(hook.ObservePublish))
		logger.Info("webhook notifications enabled", zap.String("provider", string(provider)))
	}

	store, persister, err := openStore(ctx, c, opts...)
	if err != nil {
		return err
	}
	defer persister.Close()

	snap := store.Snapshot()
	metrics.ObservePublish(snap, nil)
	logger.Info("pricing ready",
		zap.String("backend", c.Storage.Backend),
		zap.Uint64("version", snap.Version()),
		zap.String("hash", snap.ContentHash().Short()),
		zap.String("source", snap.Source().String()))

	server := api.NewServer(api.Options{
		Version: Version,
		Company: company,
		Engine:  engine.NewEngine(store, engine.WithObserver(metrics)),
		Store:   store,
		Metrics: metrics,
	})

	err = server.ListenAndServe(ctx, c.Server.Addr,
		time.Duration(c.Server.ReadTimeoutSeconds)*time.Second,
		time.Duration(c.Server.WriteTimeoutSeconds)*time.Second)
	logger.Info("server stopped")
	return err
}
