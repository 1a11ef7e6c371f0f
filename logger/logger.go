package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel представляет уровень логирования
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// zapLevel переводит уровень в уровень zap
func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLogLevel парсит строку в LogLevel
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO // по умолчанию INFO
	}
}

// Format определяет формат вывода
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Options - параметры логгера
type Options struct {
	Level  LogLevel
	Format Format
	Out    io.Writer // по умолчанию os.Stdout
}

// Logger представляет логгер с уровнями поверх zap
type Logger struct {
	mu     sync.RWMutex
	level  zap.AtomicLevel
	out    io.Writer
	format Format
	sugar  *zap.SugaredLogger
}

// New создает новый логгер с указанными параметрами
func New(opts Options) *Logger {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Format == "" {
		opts.Format = FormatConsole
	}

	l := &Logger{
		level:  zap.NewAtomicLevelAt(opts.Level.zapLevel()),
		out:    opts.Out,
		format: opts.Format,
	}
	l.rebuild()
	return l
}

// rebuild пересоздает ядро zap; вызывается под l.mu или при создании
func (l *Logger) rebuild() {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.CallerKey = ""

	var enc zapcore.Encoder
	if l.format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(l.out), l.level)
	l.sugar = zap.New(core).Sugar()
}

// SetLevel устанавливает уровень логирования
func (l *Logger) SetLevel(level LogLevel) {
	l.level.SetLevel(level.zapLevel())
}

// GetLevel возвращает текущий уровень логирования
func (l *Logger) GetLevel() LogLevel {
	switch l.level.Level() {
	case zapcore.DebugLevel:
		return DEBUG
	case zapcore.WarnLevel:
		return WARN
	case zapcore.ErrorLevel:
		return ERROR
	default:
		return INFO
	}
}

// SetOutput заменяет writer (в тестах - bytes.Buffer или io.Discard)
func (l *Logger) SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
	l.rebuild()
}

// SetFormat переключает формат вывода
func (l *Logger) SetFormat(format Format) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format = format
	l.rebuild()
}

// logf выводит сообщение с указанным уровнем
func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	if !l.level.Enabled(level.zapLevel()) {
		return
	}
	l.mu.RLock()
	s := l.sugar
	l.mu.RUnlock()

	msg := fmt.Sprintf(format, args...)
	switch level {
	case DEBUG:
		s.Debug(msg)
	case WARN:
		s.Warn(msg)
	case ERROR:
		s.Error(msg)
	default:
		s.Info(msg)
	}
}

// Debug выводит отладочное сообщение
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(DEBUG, format, args...)
}

// Info выводит информационное сообщение
func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(INFO, format, args...)
}

// Warn выводит предупреждение
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf(WARN, format, args...)
}

// Error выводит сообщение об ошибке
func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(ERROR, format, args...)
}

// Sync сбрасывает буферы zap
func (l *Logger) Sync() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sugar.Sync()
}

// Глобальный логгер
var globalLogger = New(Options{Level: INFO})

// SetGlobalLevel устанавливает уровень для глобального логгера
func SetGlobalLevel(level LogLevel) {
	globalLogger.SetLevel(level)
}

// GetGlobalLevel возвращает уровень глобального логгера
func GetGlobalLevel() LogLevel {
	return globalLogger.GetLevel()
}

// SetGlobalFormat устанавливает формат глобального логгера
func SetGlobalFormat(format Format) {
	globalLogger.SetFormat(format)
}

// SetGlobalOutput заменяет writer глобального логгера
func SetGlobalOutput(w io.Writer) {
	globalLogger.SetOutput(w)
}

// Sync сбрасывает буферы глобального логгера
func Sync() error {
	return globalLogger.Sync()
}

// Глобальные функции для удобства
func Debug(format string, args ...interface{}) {
	globalLogger.Debug(format, args...)
}

func Info(format string, args ...interface{}) {
	globalLogger.Info(format, args...)
}

func Warn(format string, args ...interface{}) {
	globalLogger.Warn(format, args...)
}

func Error(format string, args ...interface{}) {
	globalLogger.Error(format, args...)
}
