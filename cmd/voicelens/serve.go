package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voicelens/voicelens/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes brands, voice profile generation, and text evaluation endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	ctx := context.Background()
	database, err := openDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	events := newEventLogger()
	port, cleanup, err := buildPort(ctx, cfg, events)
	if err != nil {
		return fmt.Errorf("failed to build model adapter: %w", err)
	}
	defer cleanup()

	srv := server.New(server.Config{Port: cfg.Port, Model: cfg.Model}, database, port, events)
	return srv.Start()
}
