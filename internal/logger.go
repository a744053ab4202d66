package internal

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logLevel = LogLevelInfo
	logAtom  = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	logMu     sync.Mutex
	logOutput io.Writer = os.Stderr
	logFile   string
	logger    = buildLogger(os.Stderr, "")
)

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logLevel = level
	logAtom.SetLevel(level.zapLevel())
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// SetLogOutput redirects console logs. Mostly useful in tests.
func SetLogOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	logOutput = w
	logger = buildLogger(w, logFile)
}

// SetLogFile tees logs as JSON lines into a rotating file. An empty path
// disables the file sink.
func SetLogFile(path string) {
	logMu.Lock()
	defer logMu.Unlock()
	logFile = path
	logger = buildLogger(logOutput, path)
}

// SyncLogger flushes buffered log entries.
func SyncLogger() {
	logMu.Lock()
	l := logger
	logMu.Unlock()
	_ = l.Sync()
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelDebug:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func buildLogger(w io.Writer, path string) *zap.SugaredLogger {
	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleCfg.CallerKey = ""

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(zapcore.AddSync(w)), logAtom),
	}

	if path != "" {
		rotator := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // Megabytes
			MaxBackups: 5,
			MaxAge:     30, // Days
			Compress:   true,
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.TimeKey = "timestamp"
		fileCfg.MessageKey = "message"
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(rotator), logAtom))
	}

	return zap.New(zapcore.NewTee(cores...)).Sugar()
}

func current() *zap.SugaredLogger {
	logMu.Lock()
	defer logMu.Unlock()
	return logger
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	current().Errorf(format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	current().Warnf(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	current().Infof(format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	current().Debugf(format, args...)
}
