package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tkingovr/envgate/internal/filter"
	"github.com/tkingovr/envgate/internal/policy"
	"github.com/tkingovr/envgate/internal/secrets"
	"github.com/tkingovr/envgate/internal/server"
)

var (
	serveListen  string
	serveRoot    string
	serveSecrets string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the file server",
	Long: `Serve the root directory over HTTP. GET /.env returns the secrets
file to loopback clients and 403 to everyone else. The secrets file is
read on every request, so edits take effect immediately.`,
	Example: `  envgate serve
  envgate serve -l :9000 -r ./public -s ~/.config/myapp/.env`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (default \":8000\")")
	serveCmd.Flags().StringVarP(&serveRoot, "root", "r", "", "directory to serve (default \".\")")
	serveCmd.Flags().StringVarP(&serveSecrets, "secrets", "s", "", "secrets file returned for /.env (default \".env\")")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Override(serveListen, serveRoot, serveSecrets)

	engine, err := policy.NewOPAEngine()
	if err != nil {
		return fmt.Errorf("creating policy engine: %w", err)
	}

	src := secrets.NewFileSource(cfg.SecretsFile)
	chain := filter.BuildChain(filter.ChainConfig{
		Engine:  engine,
		Secrets: src,
		Logger:  logger,
	})

	srv := server.NewServer(http.FileServer(http.Dir(cfg.RootDir)), chain, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	logger.Debug("serve configuration",
		slog.String("root", cfg.RootDir),
		slog.String("secrets", src.Locator()),
	)

	return srv.ListenAndServe(ctx, cfg.ListenAddr)
}
