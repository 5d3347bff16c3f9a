package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/applicant-screener/internal/api"
	"github.com/spigell/applicant-screener/internal/logger"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook and dashboard HTTP server",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", ":8080", "address for the HTTP server")
	serveCmd.Flags().Int("threshold", 80, "minimal score for the fast track")

	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("scoring.threshold", serveCmd.Flags().Lookup("threshold"))
}

func serve(cmd *cobra.Command) {
	log, err := logger.New(logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug")})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	config, err := getConfig(viper.GetViper())
	if err != nil {
		log.Fatal("failed to get config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := buildComponents(ctx, config, log)
	if err != nil {
		log.Fatal("failed to build components", zap.Error(err))
	}
	defer c.Close()

	secret, err := googleFormSecret(config.Webhooks)
	if err != nil {
		log.Fatal("failed to load google form secret", zap.Error(err))
	}

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	server := api.New(api.Config{
		GoogleFormSecret: secret,
		ModelEnabled:     c.scorer.ModelEnabled(),
	}, api.Deps{
		Processor: c.processor,
		Scorer:    c.scorer,
		Records:   c.store,
	}, log)

	httpServer := &http.Server{
		Addr:              config.Listen,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server is listening",
			zap.String("listen", config.Listen),
			zap.Int("threshold", c.processor.Threshold()),
			zap.Bool("ai_enabled", c.scorer.ModelEnabled()),
			zap.String(logger.FieldModel, c.scorer.Model()),
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
		return
	case <-ctx.Done():
	}

	log.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
