// Package observability provides process-wide logging for pagecrate.
package observability

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the process-wide logger used by commands and wired into
// the libraries they construct. It is a no-op until InitCLILogger runs,
// so early failures never panic on a nil logger.
var CLILogger = zap.NewNop()

// InitCLILogger configures CLILogger for the given level. Logs go to
// stderr so JSONL output on stdout stays machine-parseable. The level
// "test" silences logging entirely; an unparseable level falls back to
// info.
func InitCLILogger(level string, jsonOutput bool) {
	if level == "test" {
		CLILogger = zap.NewNop()
		return
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if jsonOutput {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	sink := zapcore.Lock(os.Stderr)
	CLILogger = zap.New(zapcore.NewCore(enc, sink, lvl))
}

// Sync flushes buffered log entries. Safe to call on a no-op logger.
func Sync() {
	_ = CLILogger.Sync()
}
