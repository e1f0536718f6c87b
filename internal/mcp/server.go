package mcp

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-financial-extractor/internal/config"
	"github.com/a3tai/mcp-financial-extractor/internal/descriptions"
	"github.com/a3tai/mcp-financial-extractor/internal/export"
	"github.com/a3tai/mcp-financial-extractor/internal/metrics"
	"github.com/a3tai/mcp-financial-extractor/internal/pdf"
)

const (
	sseEndpoint     = "/sse"
	messageEndpoint = "/message"
	metricsEndpoint = "/metrics"
	healthEndpoint  = "/api/health"

	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	metrics    *metrics.ExtractionMetrics
	mcpServer  *server.MCPServer
	sseServer  *server.SSEServer
	logger     *zap.Logger

	stdin  io.Reader
	stdout io.Writer
}

// NewServer creates a new MCP server instance. m may be nil, in which case
// the metrics endpoint answers 404.
func NewServer(cfg *config.Config, pdfService *pdf.Service, m *metrics.ExtractionMetrics) (*Server, error) {
	if cfg == nil {
		return nil, eris.New("mcp: config cannot be nil")
	}
	if pdfService == nil {
		return nil, eris.New("mcp: pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		metrics:    m,
		mcpServer:  mcpServer,
		sseServer: server.NewSSEServer(mcpServer,
			server.WithBaseURL("http://"+cfg.Address()),
			server.WithSSEEndpoint(sseEndpoint),
			server.WithMessageEndpoint(messageEndpoint),
		),
		logger: zap.L().With(zap.String("component", "mcp_server")),
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ExtractFileTool,
		mcp.WithDescription(descriptions.ExtractFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file, absolute or relative to the input directory"),
		),
		mcp.WithString("formats",
			mcp.Description("Comma-separated output formats: csv, xlsx (defaults to the server configuration)"),
		),
	), s.handleExtractFile)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ExtractTextTool,
		mcp.WithDescription(descriptions.ExtractTextDescription),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Plain text of the financial statement, pages separated by form feeds"),
		),
		mcp.WithString("name",
			mcp.Description("Base name for output files"),
		),
		mcp.WithBoolean("write_files",
			mcp.Description("Also write CSV/XLSX files to the output directory"),
		),
	), s.handleExtractText)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ValidateFileTool,
		mcp.WithDescription(descriptions.ValidateFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file, absolute or relative to the input directory"),
		),
	), s.handlePDFValidateFile)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.SearchDirectoryTool,
		mcp.WithDescription(descriptions.SearchDirectoryDescription),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses the input directory if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional search query for fuzzy matching"),
		),
	), s.handlePDFSearchDirectory)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.StatsDirectoryTool,
		mcp.WithDescription(descriptions.StatsDirectoryDescription),
		mcp.WithString("directory",
			mcp.Description("Directory path to analyze (uses the input directory if empty)"),
		),
	), s.handlePDFStatsDirectory)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ServerInfoTool,
		mcp.WithDescription(descriptions.ServerInfoDescription),
	), s.handleServerInfo)
}

// Handler functions

func (s *Server) handleExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	formats, err := parseFormats(stringArg(request, "formats"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ExtractFinancials(ctx, pdf.ExtractFileRequest{Path: path, Formats: formats})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatExtractionResult(result)), nil
}

func (s *Server) handleExtractText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	writeFiles, _ := request.GetArguments()["write_files"].(bool)

	result, err := s.pdfService.ExtractText(ctx, pdf.ExtractTextRequest{
		Text:       text,
		Name:       stringArg(request, "name"),
		WriteFiles: writeFiles,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatExtractionResult(result)), nil
}

func (s *Server) handlePDFValidateFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFValidateFile(pdf.PDFValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatValidateResult(result)), nil
}

func (s *Server) handlePDFSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	req := pdf.PDFSearchDirectoryRequest{
		Directory: stringArg(request, "directory"),
		Query:     stringArg(request, "query"),
	}

	result, err := s.pdfService.PDFSearchDirectory(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSearchResult(result)), nil
}

func (s *Server) handlePDFStatsDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	result, err := s.pdfService.PDFStatsDirectory(ctx, pdf.PDFStatsDirectoryRequest{
		Directory: stringArg(request, "directory"),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStatsResult(result)), nil
}

func (s *Server) handleServerInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.ServerInfo(ctx, pdf.ServerInfoRequest{}, s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatServerInfo(result)), nil
}

func stringArg(request mcp.CallToolRequest, name string) string {
	v, _ := request.GetArguments()[name].(string)
	return v
}

func parseFormats(list string) ([]export.Format, error) {
	var formats []export.Format
	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		f, err := export.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// Handler returns the HTTP surface used in server mode: MCP over SSE, the
// Prometheus endpoint and a health check.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(sseEndpoint, s.sseServer.SSEHandler())
	mux.Handle(messageEndpoint, s.sseServer.MessageHandler())
	mux.Handle(metricsEndpoint, s.metrics.Handler())
	mux.HandleFunc(healthEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}

// Run starts the MCP server in the configured mode and blocks until ctx is
// canceled or the transport fails.
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over stdin/stdout
func (s *Server) runStdioMode(ctx context.Context) error {
	s.logger.Debug("starting stdio transport",
		zap.String("input_dir", s.config.InputDirectory),
		zap.String("output_dir", s.config.OutputDirectory),
	)

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))

	if err := stdio.Listen(ctx, s.stdin, s.stdout); err != nil && !errors.Is(err, context.Canceled) {
		return eris.Wrap(err, "mcp: serve stdio")
	}
	return nil
}

// runServerMode runs the HTTP transport on the configured address
func (s *Server) runServerMode(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return eris.Wrapf(err, "mcp: listen on %s", s.config.Address())
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	s.logger.Info("http transport listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("sse", sseEndpoint),
		zap.String("metrics", metricsEndpoint),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrap(err, "mcp: serve http")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.sseServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("sse shutdown", zap.Error(err))
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "mcp: shutdown http")
	}
	s.logger.Info("http transport stopped")
	return nil
}
