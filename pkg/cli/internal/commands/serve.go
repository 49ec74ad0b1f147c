package commands

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pctx-dev/pctx/pkg/config"
	"github.com/pctx-dev/pctx/pkg/gateway"
	"github.com/pctx-dev/pctx/pkg/logging"
	"github.com/pctx-dev/pctx/pkg/mcpupstream"
)

var (
	serveConfigPath string
	serveAddr       string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the PCTX gateway",
	Long: `Run the PCTX gateway: connect to every upstream MCP server named in the
config file, derive their combined network allow-list, and expose
list_functions / get_function_details / execute over MCP at POST /mcp.`,
	RunE: runServe,
}

func init() {
	addRootSubCmd(serveCmd)

	serveCmd.Flags().StringVar(&serveConfigPath, "config", "pctx.yaml", "path to the gateway config file")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "address to listen on")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logging.New(Verbose)

	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resolver := config.EnvResolver{}

	registry, err := mcpupstream.NewRegistry(ctx, cfg.Servers, resolver, log)
	if err != nil {
		log.Warn("one or more upstream servers failed to connect", zap.Error(err))
	}

	allowList := make(map[string]struct{})
	for _, s := range registry.Servers() {
		entry, err := mcpupstream.AllowListEntry(s.URL)
		if err != nil {
			log.Warn("skipping allow-list entry", zap.Error(err))
			continue
		}
		allowList[entry] = struct{}{}
	}

	dispatcher := mcpupstream.NewDispatcher(registry, resolver, log)
	gw := gateway.New(registry, dispatcher, allowList, log)

	srv := &http.Server{
		Addr:    serveAddr,
		Handler: gw.HTTPHandler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("pctx gateway listening", zap.String("addr", serveAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
