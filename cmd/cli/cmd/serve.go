// Package cmd - serve command
package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"datacore/api"
	"datacore/internal/config"
	"datacore/internal/logging"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the datacore HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	snapshot, err := loadSnapshot()
	if err != nil {
		return err
	}

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	addr := serveAddr
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	server := api.NewServer("0.1.0", database, snapshot,
		api.WithBaselineCPU(cfg.Billing.BaselineCPU))

	logging.Info("datacore API listening",
		zap.String("addr", addr),
		zap.String("snapshot", snapshot.ContentHash()),
	)
	return http.ListenAndServe(addr, server)
}
