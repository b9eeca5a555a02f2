package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pacs-index-api/api"
	"pacs-index-api/logging"
)

// serveCmd serves the PACS index HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the PACS index http server",
	Run: func(cmd *cobra.Command, args []string) {
		logger := logging.NewLogger()

		server, err := api.New(viper.GetBool("enable_cors"))
		if err != nil {
			logger.WithError(err).Fatal("cannot initialize api")
		}

		addr := viper.GetString("port")
		srv := &http.Server{
			Addr:    addr,
			Handler: server,
		}

		done := make(chan struct{})
		go func() {
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			<-quit

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.WithError(err).Error("server shutdown failed")
			}
			close(done)
		}()

		logger.WithField("addr", addr).Info("starting PACS index server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server failed")
		}
		<-done
		logger.Info("server stopped")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
