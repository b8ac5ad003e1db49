package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogDirName    = "logs"
	defaultLogFilename   = "agent.log"
	defaultLogMaxSizeMB  = 50
	defaultLogMaxBackups = 5
	defaultLogMaxAgeDays = 14
)

// Options 日志输出配置
type Options struct {
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// L 全局结构化日志实例
var L *zap.Logger

var (
	fallbackOnce sync.Once
	fallbackLog  *zap.Logger
)

// Init 初始化全局日志
func Init(mode string, options Options) *zap.Logger {
	L = New(mode, options)
	if L == nil {
		L = fallbackLogger()
	}
	zap.ReplaceGlobals(L)
	return L
}

// New 创建日志实例
// debug 模式输出到控制台，其余模式写入滚动日志文件，文件不可写时回退 stdout。
func New(mode string, options Options) *zap.Logger {
	debug := strings.EqualFold(strings.TrimSpace(mode), "debug")

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
		return buildLogger(newConsoleCore(level))
	}

	writer, err := newFileWriter(options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed, fallback to stdout: %v\n", err)
		writer = zapcore.AddSync(os.Stdout)
	}
	return buildLogger(zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), writer, level))
}

// StdLogger 返回兼容标准库 log 的 logger
func StdLogger() *log.Logger {
	return zap.NewStdLog(Z())
}

// Z 返回可用的结构化日志实例
func Z() *zap.Logger {
	if L != nil {
		return L
	}
	return fallbackLogger()
}

// S 返回可用的 SugaredLogger
func S() *zap.SugaredLogger {
	return Z().Sugar()
}

// Debugw 输出 debug 级别日志
func Debugw(message string, kv ...interface{}) {
	S().Debugw(message, kv...)
}

// Infow 输出 info 级别日志
func Infow(message string, kv ...interface{}) {
	S().Infow(message, kv...)
}

// Warnw 输出 warn 级别日志
func Warnw(message string, kv ...interface{}) {
	S().Warnw(message, kv...)
}

// Errorw 输出 error 级别日志
func Errorw(message string, kv ...interface{}) {
	S().Errorw(message, kv...)
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

func newConsoleCore(level zap.AtomicLevel) zapcore.Core {
	return zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(os.Stdout), level)
}

func buildLogger(core zapcore.Core) *zap.Logger {
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

func fallbackLogger() *zap.Logger {
	fallbackOnce.Do(func() {
		fallbackLog = buildLogger(newConsoleCore(zap.NewAtomicLevelAt(zap.InfoLevel)))
	})
	return fallbackLog
}

func newFileWriter(options Options) (zapcore.WriteSyncer, error) {
	dir := strings.TrimSpace(options.Dir)
	if dir == "" {
		workDir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve workdir failed: %w", err)
		}
		dir = filepath.Join(workDir, defaultLogDirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir failed: %w", err)
	}

	filename := strings.TrimSpace(options.Filename)
	if filename == "" {
		filename = defaultLogFilename
	}
	logFilePath := filepath.Join(dir, filename)

	// 提前验证可写，避免首条日志时才失败
	file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file failed: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("close log file failed: %w", err)
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    positiveOr(options.MaxSizeMB, defaultLogMaxSizeMB),
		MaxBackups: positiveOr(options.MaxBackups, defaultLogMaxBackups),
		MaxAge:     positiveOr(options.MaxAgeDays, defaultLogMaxAgeDays),
		Compress:   options.Compress,
	}), nil
}

func positiveOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
