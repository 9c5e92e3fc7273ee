package logger

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"
)

// LogLevel 定义日志级别类型
type LogLevel int

// 日志级别常量定义
const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// LogLevelNames 日志级别名称映射
var LogLevelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// 全局日志级别与格式，由 config.Load 设置；-1 表示未设置
var (
	globalLevel atomic.Int32
	jsonFormat  atomic.Bool
)

func init() {
	globalLevel.Store(-1)
}

// SetGlobalLevel 设置进程级别的最低日志级别
// 所有 Logger 实例取自身级别与全局级别中较高者
func SetGlobalLevel(level LogLevel) {
	globalLevel.Store(int32(level))
}

// SetGlobalFormat 设置日志输出格式：json 或 text
func SetGlobalFormat(format string) {
	jsonFormat.Store(strings.EqualFold(format, "json"))
}

// Logger 日志记录器结构体
type Logger struct {
	level LogLevel // 当前日志级别
}

// NewLogger 创建新的日志记录器实例
func NewLogger(level LogLevel) *Logger {
	return &Logger{
		level: level,
	}
}

// ParseLogLevel 从字符串解析日志级别
func ParseLogLevel(levelStr string) LogLevel {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO // 默认级别
	}
}

// shouldLog 检查是否应该记录指定级别的日志
func (l *Logger) shouldLog(level LogLevel) bool {
	min := l.level
	if g := LogLevel(globalLevel.Load()); g >= 0 && g > min {
		min = g
	}
	return level >= min
}

// formatMessage 按当前全局格式组装日志行
func (l *Logger) formatMessage(level LogLevel, format string, args ...interface{}) string {
	levelName := LogLevelNames[level]
	message := fmt.Sprintf(format, args...)
	if !jsonFormat.Load() {
		return fmt.Sprintf("[%s] %s", levelName, message)
	}
	line, err := json.Marshal(struct {
		Time  string `json:"time"`
		Level string `json:"level"`
		Msg   string `json:"msg"`
	}{time.Now().Format(time.RFC3339), levelName, message})
	if err != nil {
		return fmt.Sprintf("[%s] %s", levelName, message)
	}
	return string(line)
}

func (l *Logger) output(level LogLevel, format string, args ...interface{}) {
	if l == nil || !l.shouldLog(level) {
		return
	}
	line := l.formatMessage(level, format, args...)
	if jsonFormat.Load() {
		// json 行自带 time 字段，不带 log 包的日期前缀
		fmt.Fprintln(log.Writer(), line)
		return
	}
	log.Print(line)
}

// Debug 记录DEBUG级别日志
func (l *Logger) Debug(format string, args ...interface{}) {
	l.output(DEBUG, format, args...)
}

// Info 记录INFO级别日志
func (l *Logger) Info(format string, args ...interface{}) {
	l.output(INFO, format, args...)
}

// Warn 记录WARN级别日志
func (l *Logger) Warn(format string, args ...interface{}) {
	l.output(WARN, format, args...)
}

// Error 记录ERROR级别日志
func (l *Logger) Error(format string, args ...interface{}) {
	l.output(ERROR, format, args...)
}

// SetLevel 设置日志级别
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

// GetLevel 获取当前日志级别
func (l *Logger) GetLevel() LogLevel {
	return l.level
}
