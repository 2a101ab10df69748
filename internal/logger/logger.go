package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/losebird/lifelog-ai/internal/constants"
)

var (
	// Logger is the global logger instance
	Logger *log.Logger

	sink *output
)

// Config holds logger configuration
type Config struct {
	Debug     bool
	ConfigDir string
}

// output sends every line to the log file and, when console is set, to the
// terminal as well. The console copy is dropped while muted is non-zero.
type output struct {
	mu      sync.Mutex
	file    io.Writer
	console io.Writer
	muted   int
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.console != nil && o.muted == 0 {
		_, _ = o.console.Write(p)
	}
	if o.file == nil {
		return len(p), nil
	}
	return o.file.Write(p)
}

func install(o *output, opts log.Options) {
	opts.Prefix = constants.AppName
	sink = o
	Logger = log.NewWithOptions(o, opts)
}

func logPath(configDir string) string {
	return filepath.Join(configDir, "logs", constants.AppName+".log")
}

// Init initializes the global logger. Lines always go to a rotating file
// under ConfigDir; Debug also echoes them to stderr.
func Init(cfg Config) error {
	file := logPath(cfg.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return err
	}

	o := &output{file: &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}}
	level := log.WarnLevel
	if cfg.Debug {
		o.console = os.Stderr
		level = log.DebugLevel
	}

	install(o, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
	})
	return nil
}

// InitWriter points the global logger at w alone.
func InitWriter(w io.Writer, level log.Level) {
	install(&output{file: w}, log.Options{Level: level})
}

// SuspendConsole keeps log lines off the terminal until the returned func
// is called, so debug output cannot tear a full-screen UI. The log file
// still receives every line. Calls nest.
func SuspendConsole() (resume func()) {
	o := sink
	if o == nil {
		return func() {}
	}
	o.mu.Lock()
	o.muted++
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			o.muted--
			o.mu.Unlock()
		})
	}
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
