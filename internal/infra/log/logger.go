package log

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var Logger = zap.NewNop()
var consoleLogger = zap.NewNop() // SUCCESS and ERROR lines for the terminal
var mu sync.RWMutex

// Options controls where logs go. Zero value writes nothing.
type Options struct {
	Dir         string // directory for app.log, empty disables the file log
	Level       string // debug, info, warn, error
	Console     bool   // print SUCCESS/ERROR lines to stdout
	MaxFileSize int64  // truncate app.log above this size, 0 means MaxLogFileSize
}

// Init builds the file and console loggers. Safe to call more than once;
// the last call wins.
func Init(opts Options) error {
	level := zapcore.DebugLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	file := zap.NewNop()
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create logs directory: %w", err)
		}

		fileConfig := zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
			EncodeDuration: zapcore.SecondsDurationEncoder,
		}

		maxSize := opts.MaxFileSize
		if maxSize <= 0 {
			maxSize = MaxLogFileSize
		}

		fileCore := zapcore.NewCore(
			&customFileEncoder{Encoder: zapcore.NewConsoleEncoder(fileConfig)},
			getLogFileWriter(filepath.Join(opts.Dir, "app.log"), maxSize),
			level,
		)
		file = zap.New(fileCore)
	}

	console := zap.NewNop()
	if opts.Console {
		consoleConfig := zap.NewDevelopmentConfig()
		consoleConfig.EncoderConfig.EncodeLevel = customLevelEncoder
		consoleConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		consoleConfig.EncoderConfig.EncodeCaller = nil
		consoleConfig.Development = false
		consoleConfig.DisableStacktrace = true
		consoleConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		consoleConfig.OutputPaths = []string{"stdout"}

		var err error
		console, err = consoleConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to build console logger: %w", err)
		}
	}

	mu.Lock()
	Logger = file
	consoleLogger = console
	mu.Unlock()
	return nil
}

// Sync flushes both loggers.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = Logger.Sync()
	_ = consoleLogger.Sync()
}

func loggers() (*zap.Logger, *zap.Logger) {
	mu.RLock()
	defer mu.RUnlock()
	return Logger, consoleLogger
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
)

func customLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(colorCyan + "DEBUG" + colorReset)
	case zapcore.InfoLevel:
		enc.AppendString(colorGreen + "SUCCESS" + colorReset) // console INFO is SUCCESS
	case zapcore.WarnLevel:
		enc.AppendString(colorYellow + "WARN" + colorReset)
	case zapcore.ErrorLevel:
		enc.AppendString(colorRed + "ERROR" + colorReset)
	case zapcore.FatalLevel:
		enc.AppendString(colorRed + "FATAL" + colorReset)
	case zapcore.PanicLevel:
		enc.AppendString(colorRed + "PANIC" + colorReset)
	default:
		enc.AppendString(colorWhite + level.String() + colorReset)
	}
}

// LogInfo writes to the file log only.
func LogInfo(message string, fields ...zap.Field) {
	file, _ := loggers()
	file.Info(message, fields...)
}

// LogSuccess writes to the file log and prints a checkmark line on the console.
func LogSuccess(message string, fields ...zap.Field) {
	file, console := loggers()
	durationMs := extractDuration(fields)

	file.Info(message, fields...)

	if durationMs > 0 {
		console.Info(fmt.Sprintf("✓ %s (%dms)", message, durationMs))
	} else {
		console.Info("✓ " + message)
	}
}

// LogError writes to the file log and the console.
func LogError(message string, fields ...zap.Field) {
	file, console := loggers()
	durationMs := extractDuration(fields)

	file.Error(message, fields...)

	if durationMs > 0 {
		console.Error(fmt.Sprintf("✗ %s (%dms)", message, durationMs))
	} else {
		console.Error("✗ " + message)
	}
}

// LogWarn writes to the file log only.
func LogWarn(message string, fields ...zap.Field) {
	file, _ := loggers()
	file.Warn(message, fields...)
}

// LogDebug writes to the file log only.
func LogDebug(message string, fields ...zap.Field) {
	file, _ := loggers()
	file.Debug(message, fields...)
}

// extractDuration pulls duration_ms out of the fields, if present.
func extractDuration(fields []zap.Field) int64 {
	for _, field := range fields {
		if field.Key == "duration_ms" && field.Type == zapcore.Int64Type {
			return field.Integer
		}
	}
	return 0
}

const (
	// MaxLogFileSize is the default cap for app.log (50MB).
	MaxLogFileSize = 50 * 1024 * 1024
)

type rotatingLogWriter struct {
	file    *os.File
	path    string
	maxSize int64
	mu      sync.Mutex
}

func (w *rotatingLogWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := w.file.Stat()
	if err == nil && info.Size() > w.maxSize {
		w.file.Close()

		w.file, err = os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return 0, fmt.Errorf("failed to truncate log file: %w", err)
		}
	}

	return w.file.Write(p)
}

func (w *rotatingLogWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Sync()
}

// getLogFileWriter opens path for append, truncating it first when it is over maxSize.
func getLogFileWriter(path string, maxSize int64) zapcore.WriteSyncer {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file %s: %v, falling back to stderr\n", path, err)
		return zapcore.AddSync(os.Stderr)
	}

	info, err := file.Stat()
	if err == nil && info.Size() > maxSize {
		file.Close()
		file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to truncate log file %s: %v, falling back to stderr\n", path, err)
			return zapcore.AddSync(os.Stderr)
		}
	}

	return zapcore.AddSync(&rotatingLogWriter{file: file, path: path, maxSize: maxSize})
}

// customFileEncoder writes "time     LEVEL message\t{json fields}".
type customFileEncoder struct {
	zapcore.Encoder
}

func (e *customFileEncoder) Clone() zapcore.Encoder {
	return &customFileEncoder{
		Encoder: e.Encoder.Clone(),
	}
}

func (e *customFileEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf := buffer.NewPool().Get()

	buf.AppendString(entry.Time.Format("2006-01-02 15:04:05"))
	buf.AppendString("     ")

	buf.AppendString(entry.Level.CapitalString())
	buf.AppendString(" ")

	if entry.Message != "" {
		buf.AppendString(entry.Message)
	}

	if len(fields) > 0 {
		buf.AppendString("\t")
		fieldMap := make(map[string]interface{})
		for _, field := range fields {
			switch field.Type {
			case zapcore.StringType:
				fieldMap[field.Key] = field.String
			case zapcore.Int64Type, zapcore.Int32Type:
				fieldMap[field.Key] = field.Integer
			case zapcore.BoolType:
				fieldMap[field.Key] = field.Integer == 1
			case zapcore.Float64Type:
				fieldMap[field.Key] = math.Float64frombits(uint64(field.Integer))
			case zapcore.ErrorType:
				if err, ok := field.Interface.(error); ok && err != nil {
					fieldMap[field.Key] = err.Error()
				}
			default:
				if field.Interface != nil {
					fieldMap[field.Key] = field.Interface
				} else {
					fieldMap[field.Key] = field.Integer
				}
			}
		}

		jsonData, err := json.Marshal(fieldMap)
		if err == nil {
			buf.AppendString(string(jsonData))
		}
	}

	buf.AppendString("\n")
	return buf, nil
}
