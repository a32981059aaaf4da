package logger

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu           sync.Mutex
	currentLevel = LevelInfo
	logger       = stdlog.New(os.Stdout, "", 0)
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToUpper(level) {
	case "DEBUG":
		currentLevel = LevelDebug
	case "INFO":
		currentLevel = LevelInfo
	case "WARN":
		currentLevel = LevelWarn
	case "ERROR":
		currentLevel = LevelError
	}
}

func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = stdlog.New(w, "", 0)
}

func log(level Level, format string, v ...any) {
	mu.Lock()
	defer mu.Unlock()
	if level < currentLevel {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	prefix := fmt.Sprintf("[%s] [%s] ", timestamp, level.String())
	message := fmt.Sprintf(format, v...)
	logger.Println(prefix + message)
}

func Debug(format string, v ...any) {
	log(LevelDebug, format, v...)
}

func Info(format string, v ...any) {
	log(LevelInfo, format, v...)
}

func Warn(format string, v ...any) {
	log(LevelWarn, format, v...)
}

func Error(format string, v ...any) {
	log(LevelError, format, v...)
}

// Mirror duplicates every line it logs to a caller-supplied stream in
// addition to the process log. It is handed to configuration parsers so
// that syntax diagnostics reach both the daemon log and the tool that
// asked for the parse (e.g. a config check run).
//
// A nil Mirror, or a Mirror with a nil writer, degrades to plain logging.
type Mirror struct {
	W io.Writer
}

func (m *Mirror) echo(level Level, format string, v ...any) {
	log(level, format, v...)
	if m == nil || m.W == nil {
		return
	}
	fmt.Fprintf(m.W, "[%s] %s\n", level.String(), fmt.Sprintf(format, v...))
}

func (m *Mirror) Info(format string, v ...any) {
	m.echo(LevelInfo, format, v...)
}

func (m *Mirror) Warn(format string, v ...any) {
	m.echo(LevelWarn, format, v...)
}

func (m *Mirror) Error(format string, v ...any) {
	m.echo(LevelError, format, v...)
}
