package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bookbuild/internal/config"
	"github.com/dgallion1/bookbuild/internal/server"
)

var (
	serveBookConfig string
	servePort       string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the exported book tree over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		cfg, err := config.Load(serveBookConfig)
		if err != nil {
			return err
		}
		if servePort != "" {
			cfg.Port = servePort
		}

		srv := server.New(cfg.ExportDir, cfg.MarkdownDir, log)

		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown.
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh
			log.Info("shutting down...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		log.Info("starting bookbuild server", "port", cfg.Port, "export", cfg.ExportDir)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveBookConfig, "book-config", "book_config.toml", "Book metadata TOML file")
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Listen port (default 8090)")
	rootCmd.AddCommand(serveCmd)
}
