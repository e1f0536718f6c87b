package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-financial-extractor/internal/export"
	"github.com/a3tai/mcp-financial-extractor/internal/finance"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Log formats
	LogFormatJSON    = "json"
	LogFormatConsole = "console"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 32 * 1024 * 1024 // 32MB
	DefaultOutputDir   = "output"

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "FIN_EXTRACT"
)

// ErrVersionRequested is returned by LoadFromFlags when --version is given
var ErrVersionRequested = eris.New("version requested")

// Config holds all configuration for the financial extractor server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Input and output
	InputDirectory  string
	OutputDirectory string
	Formats         []string

	// Extraction
	MaxFileSize int64 // Maximum PDF file size in bytes
	MaxYears    int

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
	LogFormat  string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:            ModeStdio,
		Host:            DefaultHost,
		Port:            DefaultPort,
		InputDirectory:  currentDir,
		OutputDirectory: filepath.Join(currentDir, DefaultOutputDir),
		Formats:         []string{string(export.FormatCSV), string(export.FormatXLSX)},
		MaxFileSize:     DefaultMaxFileSize,
		MaxYears:        finance.DefaultMaxYears,
		Version:         "1.0.0",
		ServerName:      "mcp-financial-extractor",
		LogLevel:        DefaultLogLevel,
		LogFormat:       LogFormatJSON,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	for _, dir := range []*string{&cfg.InputDirectory, &cfg.OutputDirectory} {
		if *dir == "" {
			continue
		}
		if expandedPath, err := filepath.Abs(*dir); err == nil {
			*dir = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, eris.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.InputDirectory)
	viper.SetDefault("outdir", cfg.OutputDirectory)
	viper.SetDefault("formats", cfg.Formats)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("maxyears", cfg.MaxYears)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("logformat", cfg.LogFormat)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.InputDirectory, "Directory containing statement PDFs")
	pflag.String("outdir", cfg.OutputDirectory, "Directory extracted CSV/XLSX files are written to")
	pflag.StringSlice("formats", cfg.Formats, "Output formats (csv, xlsx)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Int("maxyears", cfg.MaxYears, "Number of most recent fiscal years to report")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("logformat", cfg.LogFormat, "Log format (json, console)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "dir", "outdir", "formats",
		"maxfilesize", "maxyears", "loglevel", "logformat",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP Financial Extractor - A Model Context Protocol server that extracts "+
			"normalized line items from financial statement PDFs\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/reports --outdir=/reports/out     "+
			"# stdio mode with custom directories\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --dir=/reports             # server mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --formats=csv --maxyears=3 # CSV only, three years\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		for _, key := range []string{"MODE", "HOST", "PORT", "DIR", "OUTDIR", "FORMATS",
			"MAXFILESIZE", "MAXYEARS", "LOGLEVEL", "LOGFORMAT"} {
			fmt.Fprintf(os.Stderr, "  %s_%s\n", envPrefix, key)
		}
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.InputDirectory = viper.GetString("dir")
	cfg.OutputDirectory = viper.GetString("outdir")
	cfg.Formats = splitList(viper.GetStringSlice("formats"))
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.MaxYears = viper.GetInt("maxyears")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.LogFormat = viper.GetString("logformat")
}

// splitList flattens comma-joined entries, as env values arrive as one string
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks if the configuration is valid. Missing directories are created.
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return eris.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return eris.New("port must be between 1 and 65535")
	}

	if c.InputDirectory == "" {
		return eris.New("input directory cannot be empty")
	}
	if c.OutputDirectory == "" {
		return eris.New("output directory cannot be empty")
	}
	for _, dir := range []string{c.InputDirectory, c.OutputDirectory} {
		if err := ensureDirectory(dir); err != nil {
			return err
		}
	}

	if c.MaxFileSize <= 0 {
		return eris.New("maximum file size must be positive")
	}
	if c.MaxYears < 1 {
		return eris.New("maximum years must be at least 1")
	}

	if _, err := c.OutputFormats(); err != nil {
		return err
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return eris.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatConsole {
		return eris.Errorf("invalid log format: %s (must be json or console)", c.LogFormat)
	}

	return nil
}

func ensureDirectory(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
			return eris.Wrapf(err, "cannot create directory %s", dir)
		}
	} else if err != nil {
		return eris.Wrapf(err, "cannot access directory %s", dir)
	}
	return nil
}

// OutputFormats parses the configured format names
func (c *Config) OutputFormats() ([]export.Format, error) {
	if len(c.Formats) == 0 {
		return nil, eris.New("at least one output format is required")
	}

	formats := make([]export.Format, 0, len(c.Formats))
	seen := make(map[export.Format]bool, len(c.Formats))
	for _, name := range c.Formats {
		f, err := export.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats, nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, InputDirectory: %s, OutputDirectory: %s, "+
		"Formats: %v, LogLevel: %s, MaxFileSize: %d, MaxYears: %d}",
		c.Mode, c.Host, c.Port, c.InputDirectory, c.OutputDirectory,
		c.Formats, c.LogLevel, c.MaxFileSize, c.MaxYears)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
