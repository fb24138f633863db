package logger

import (
	"log"
	"sync"

	"github.com/fatih/color"
)

// Level represents the severity level of a log message.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	NoticeLevel
	ErrorLevel
)

type Chain int

const (
	None = iota
	Eth
	Bsc
	Pol
	Arb
	Ava
	Base
	Zeta
)

var chainIDMap = map[int]Chain{
	1:     Eth,
	56:    Bsc,
	137:   Pol,
	42161: Arb,
	43114: Ava,
	8453:  Base,
	7000:  Zeta,
}

var chainPrefixes = map[Chain]string{
	None: "",
	Eth:  "[ETH]  ",
	Bsc:  "[BSC]  ",
	Pol:  "[POL]  ",
	Arb:  "[ARB]  ",
	Ava:  "[AVA]  ",
	Base: "[BASE] ",
	Zeta: "[ZETA] ",
}

var colors = map[Chain]color.Attribute{
	None: color.FgWhite,
	Eth:  color.FgHiGreen,
	Bsc:  color.FgYellow,
	Pol:  color.FgMagenta,
	Arb:  color.FgHiBlue,
	Ava:  color.FgRed,
	Base: color.FgBlue,
	Zeta: color.FgGreen,
}

var levelLabels = map[Level]string{
	DebugLevel:  "[DEBUG]  ",
	InfoLevel:   "[INFO]   ",
	NoticeLevel: "[NOTICE] ",
	ErrorLevel:  "[ERROR]  ",
}

// Logger is a simple interface for logging messages.
type Logger interface {
	// Info logs an informational message.
	Info(format string, args ...interface{})
	InfoWithChain(chainID int, format string, args ...interface{})

	// Error logs an error message.
	Error(format string, args ...interface{})
	ErrorWithChain(chainID int, format string, args ...interface{})

	// Debug logs a debug message.
	Debug(format string, args ...interface{})
	DebugWithChain(chainID int, format string, args ...interface{})

	// Notice logs a notice message.
	Notice(format string, args ...interface{})
	NoticeWithChain(chainID int, format string, args ...interface{})
}

// EmptyLogger is a Logger implementation that discards everything.
type EmptyLogger struct{}

var _ Logger = (*EmptyLogger)(nil)

func (l *EmptyLogger) Info(_ string, _ ...interface{})                   {}
func (l *EmptyLogger) InfoWithChain(_ int, _ string, _ ...interface{})   {}
func (l *EmptyLogger) Error(_ string, _ ...interface{})                  {}
func (l *EmptyLogger) ErrorWithChain(_ int, _ string, _ ...interface{})  {}
func (l *EmptyLogger) Debug(_ string, _ ...interface{})                  {}
func (l *EmptyLogger) DebugWithChain(_ int, _ string, _ ...interface{})  {}
func (l *EmptyLogger) Notice(_ string, _ ...interface{})                 {}
func (l *EmptyLogger) NoticeWithChain(_ int, _ string, _ ...interface{}) {}

// StdLogger writes messages to the console through the standard log package.
type StdLogger struct {
	enableColoring bool
	level          Level
	mu             sync.Mutex
}

var _ Logger = (*StdLogger)(nil)

func NewStdLogger(enableColoring bool, level Level) *StdLogger {
	return &StdLogger{
		enableColoring: enableColoring,
		level:          level,
	}
}

// logf formats and writes a single message if the level is enabled.
func (l *StdLogger) logf(level Level, chain Chain, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.level > level {
		return
	}

	chainPrefix := chainPrefixes[chain]
	if l.enableColoring && chainPrefix != "" {
		chainPrefix = color.New(colors[chain]).Sprint(chainPrefix)
	}

	log.Printf(levelLabels[level]+chainPrefix+format, args...)
}

func (l *StdLogger) Info(format string, args ...interface{}) {
	l.logf(InfoLevel, None, format, args...)
}

func (l *StdLogger) InfoWithChain(chainID int, format string, args ...interface{}) {
	l.logf(InfoLevel, chainIDMap[chainID], format, args...)
}

func (l *StdLogger) Error(format string, args ...interface{}) {
	l.logf(ErrorLevel, None, format, args...)
}

func (l *StdLogger) ErrorWithChain(chainID int, format string, args ...interface{}) {
	l.logf(ErrorLevel, chainIDMap[chainID], format, args...)
}

func (l *StdLogger) Debug(format string, args ...interface{}) {
	l.logf(DebugLevel, None, format, args...)
}

func (l *StdLogger) DebugWithChain(chainID int, format string, args ...interface{}) {
	l.logf(DebugLevel, chainIDMap[chainID], format, args...)
}

func (l *StdLogger) Notice(format string, args ...interface{}) {
	l.logf(NoticeLevel, None, format, args...)
}

func (l *StdLogger) NoticeWithChain(chainID int, format string, args ...interface{}) {
	l.logf(NoticeLevel, chainIDMap[chainID], format, args...)
}
