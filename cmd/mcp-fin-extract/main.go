package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-financial-extractor/internal/config"
	"github.com/a3tai/mcp-financial-extractor/internal/mcp"
	"github.com/a3tai/mcp-financial-extractor/internal/metrics"
	"github.com/a3tai/mcp-financial-extractor/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// newServer wires the extraction service and the MCP server from cfg
func newServer(cfg *config.Config, m *metrics.ExtractionMetrics) (*mcp.Server, error) {
	formats, err := cfg.OutputFormats()
	if err != nil {
		return nil, err
	}

	pdfService, err := pdf.NewService(pdf.ServiceConfig{
		InputDirectory:  cfg.InputDirectory,
		OutputDirectory: cfg.OutputDirectory,
		MaxFileSize:     cfg.MaxFileSize,
		MaxYears:        cfg.MaxYears,
		Formats:         formats,
		Metrics:         m,
	})
	if err != nil {
		return nil, eris.Wrap(err, "create extraction service")
	}

	server, err := mcp.NewServer(cfg, pdfService, m)
	if err != nil {
		return nil, eris.Wrap(err, "create MCP server")
	}
	return server, nil
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server, logger *zap.Logger) error {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signalCh)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		logger.Info("received signal, initiating graceful shutdown", zap.String("signal", sig.String()))
		cancel()

		if err := <-serverErrCh; err != nil {
			return eris.Wrap(err, "server shutdown")
		}

	case err := <-serverErrCh:
		if err != nil {
			return err
		}
	}

	logger.Info("server stopped successfully")
	return nil
}

// runStdioMode handles stdio mode execution. The parent process controls our
// lifecycle, so the server returns when stdin is closed.
func runStdioMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer cancel()

	return server.Run(ctx)
}

func main() {
	cfg, err := config.LoadFromFlags()
	if eris.Is(err, config.ErrVersionRequested) {
		printVersion(os.Stdout)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger, err := config.InitLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("starting", zap.String("config", cfg.String()))

	server, err := newServer(cfg, metrics.NewExtractionMetrics())
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		err = runServerMode(ctx, cancel, server, logger)
	} else {
		err = runStdioMode(ctx, cancel, server)
	}
	if err != nil {
		logger.Error("server error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "MCP Financial Extractor\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
