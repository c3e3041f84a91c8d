package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Debug is true when MIC_DEBUG is set. DebugLog is a no-op logger until
// InitDebugLog succeeds, so callers may log unconditionally.
var (
	Debug    = false
	DebugLog = zap.NewNop().Sugar()
)

func CheckDebug() bool {
	return os.Getenv("MIC_DEBUG") != ""
}

// InitDebugLog points DebugLog at <dataDir>/debug.log when debugging is on.
func InitDebugLog(dataDir string) error {
	Debug = CheckDebug()
	if !Debug {
		return nil
	}

	if err := EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	logPath := filepath.Join(dataDir, "debug.log")
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open debug log: %w", err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(f), zapcore.DebugLevel)
	DebugLog = zap.New(core, zap.AddCaller()).Sugar()
	DebugLog.Infof("debug logging enabled: %s", logPath)
	return nil
}

// SyncDebugLog flushes buffered log entries.
func SyncDebugLog() {
	_ = DebugLog.Sync()
}
