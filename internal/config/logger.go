package config

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger builds the process logger from cfg and installs it as the zap
// global. Logs always go to stderr. In stdio mode stdout carries the MCP
// protocol, so logging is disabled there unless the level is debug.
func InitLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.IsStdioMode() && !cfg.IsDebug() {
		logger := zap.NewNop()
		zap.ReplaceGlobals(logger)
		return logger, nil
	}

	var zapCfg zap.Config
	if cfg.LogFormat == LogFormatConsole {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build(zap.Fields(zap.String("service", cfg.ServerName)))
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return logger, nil
}
