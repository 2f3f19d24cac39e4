/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tieubaoca/docqa-be/handler"
)

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP server",
	Long:  `Starts the server exposing /predict_pdf, /predict_txt and /analyze_csv.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load config")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		documentService, mongoClient, err := buildDocumentService(connectCtx, cfg, true)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize services")
		}
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
			}
		}()

		documentHandler := handler.NewDocumentHandler(documentService, cfg.MaxUploadBytes)
		server := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler.NewRouter(documentHandler),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			log.Info().Str("port", cfg.Port).Str("database", cfg.Database).Msg("Starting server")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server error")
			}
		}()

		<-ctx.Done()
		log.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
