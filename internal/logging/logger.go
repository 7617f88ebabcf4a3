package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a logger writing JSON lines to a rotating file and a
// human-readable tee to stdout.
func New(logFilePath string) *zap.Logger {
	rotator := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		zap.InfoLevel,
	)
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stdout),
		zap.DebugLevel,
	)

	return zap.New(zapcore.NewTee(fileCore, consoleCore), zap.AddCaller())
}

// WailsAdapter exposes a zap logger through the Wails logger interface
// so runtime messages land in the same rotating file.
type WailsAdapter struct {
	logger *zap.Logger
}

// NewWailsAdapter wraps logger for the Wails runtime.
func NewWailsAdapter(logger *zap.Logger) *WailsAdapter {
	return &WailsAdapter{logger: logger}
}

func (a *WailsAdapter) Print(message string)   { a.logger.Info(message) }
func (a *WailsAdapter) Trace(message string)   { a.logger.Debug(message) }
func (a *WailsAdapter) Debug(message string)   { a.logger.Debug(message) }
func (a *WailsAdapter) Info(message string)    { a.logger.Info(message) }
func (a *WailsAdapter) Warning(message string) { a.logger.Warn(message) }
func (a *WailsAdapter) Error(message string)   { a.logger.Error(message) }
func (a *WailsAdapter) Fatal(message string)   { a.logger.Fatal(message) }
