// Command domdrive is the browser automation MCP server.
//
// Usage:
//
//	domdrive                                  # stdio transport, headless browser
//	domdrive -config domdrive.yaml            # settings from YAML config
//	domdrive -transport http -port 8086       # streamable HTTP transport
//	domdrive -headed                          # show the browser window
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/domdrive"
)

func main() {
	configPath := flag.String("config", "", "path to domdrive.yaml config file")
	transport := flag.String("transport", "stdio", "MCP transport: stdio or http")
	port := flag.String("port", "8086", "HTTP port (http transport only)")
	headed := flag.Bool("headed", false, "show the browser window")
	remote := flag.String("remote", "", "attach to a running browser via devtools websocket URL")
	auditPath := flag.String("audit", "", "path to the audit SQLite database (empty disables auditing)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	// Logs go to stderr: stdout belongs to the stdio transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *transport, *port, *headed, *remote, *auditPath); err != nil {
		logger.Error("domdrive: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, transport, port string, headed bool, remote, auditPath string) error {
	var cfg *domdrive.Config
	if configPath != "" {
		loaded, err := domdrive.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = domdrive.DefaultConfig()
	}

	// Flags override config.
	if headed {
		cfg.Browser.Headed = true
	}
	if remote != "" {
		cfg.Browser.Remote = remote
	}
	if auditPath != "" {
		cfg.Audit.Path = auditPath
	}

	svc := domdrive.New(cfg, logger)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer svc.Close()

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "domdrive",
		Version: "1.0.0",
	}, nil)
	svc.RegisterMCP(srv)

	switch transport {
	case "stdio":
		logger.Info("domdrive: serving MCP on stdio")
		return srv.Run(ctx, &mcp.StdioTransport{})
	case "http":
		return serveHTTP(ctx, logger, srv, port)
	default:
		return fmt.Errorf("unknown transport: %s", transport)
	}
}

func serveHTTP(ctx context.Context, logger *slog.Logger, srv *mcp.Server, port string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return srv
	}, nil)

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/mcp", handler)
	r.Handle("/mcp/*", handler)

	httpSrv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("domdrive: serving MCP over HTTP", "port", port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
