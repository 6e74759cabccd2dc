// Command wayback is an MCP server exposing Wayback Machine lookups.
//
// Usage:
//
//	wayback                        # serve MCP over stdio
//	wayback -config wayback.yaml   # with file configuration
//	HTTP_ADDR=:8085 wayback        # additionally serve streamable HTTP
//	MCP_TRANSPORT=quic wayback     # additionally serve MCP over QUIC
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/wayback/archive"
	"github.com/hazyhaar/wayback/audit"
	"github.com/hazyhaar/wayback/dbopen"
	"github.com/hazyhaar/wayback/kit"
	"github.com/hazyhaar/wayback/mcpquic"
)

const serverVersion = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to wayback.yaml config file")
	flag.Parse()

	var level slog.Level
	switch env("LOG_LEVEL", "info") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	// Logs go to stderr: stdout belongs to the stdio MCP transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath); err != nil && ctx.Err() == nil {
		logger.Error("wayback: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath string) error {
	fc, err := loadFileConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	s := resolveSettings(fc)

	var opts []archive.ServiceOption

	// Optional audit trail.
	if s.auditDB != "" {
		db, err := dbopen.Open(s.auditDB, dbopen.WithMkdirAll())
		if err != nil {
			return fmt.Errorf("open audit db: %w", err)
		}
		defer db.Close()

		trail := audit.New(db, s.auditBufferSize)
		if err := trail.Init(); err != nil {
			return err
		}
		defer trail.Close()

		if s.auditRetentionDays > 0 {
			if n, err := trail.Cleanup(ctx, s.auditRetentionDays); err != nil {
				logger.Warn("audit cleanup", "error", err)
			} else if n > 0 {
				logger.Info("audit cleanup", "deleted", n)
			}
		}
		opts = append(opts, archive.WithAudit(trail))
		logger.Info("audit trail enabled", "db", s.auditDB)
	}

	svc := archive.New(&s.archive, logger, opts...)

	mcpSrv := mcp.NewServer(&mcp.Implementation{
		Name:    "wayback-machine",
		Version: serverVersion,
	}, nil)
	svc.RegisterMCP(mcpSrv)

	// Optional HTTP surface: health plus the streamable MCP endpoint.
	if s.httpAddr != "" {
		r := chi.NewRouter()
		r.Use(middleware.RealIP)
		r.Use(middleware.Recoverer)

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		r.Handle("/mcp", tagTransport("http", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return mcpSrv
		}, nil)))

		httpSrv := &http.Server{
			Addr:              s.httpAddr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP starting", "addr", s.httpAddr)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			httpSrv.Shutdown(shutdownCtx)
		}()
	}

	// Optional MCP over QUIC.
	if s.transport == "quic" {
		var tlsCfg *tls.Config
		if s.tlsCert != "" && s.tlsKey != "" {
			tlsCfg, err = mcpquic.ServerTLSConfig(s.tlsCert, s.tlsKey)
		} else {
			tlsCfg, err = mcpquic.SelfSignedTLSConfig()
		}
		if err != nil {
			return fmt.Errorf("MCP QUIC TLS: %w", err)
		}

		ql, err := mcpquic.NewListener(s.quicAddr, tlsCfg, mcpSrv, logger)
		if err != nil {
			return fmt.Errorf("MCP QUIC listener: %w", err)
		}
		defer ql.Close()
		go func() {
			logger.Info("MCP QUIC starting", "addr", s.quicAddr)
			if err := ql.Serve(ctx); err != nil && ctx.Err() == nil {
				logger.Error("MCP QUIC", "error", err)
			}
		}()
	}

	// Stdio is the primary transport; Run blocks until the client
	// disconnects or the context is cancelled.
	logger.Info("wayback MCP server starting", "transport", "stdio", "version", serverVersion)
	return mcpSrv.Run(ctx, &mcp.StdioTransport{})
}

// tagTransport labels request contexts so audit entries record which
// surface a call arrived on.
func tagTransport(name string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(kit.WithTransport(r.Context(), name)))
	})
}
