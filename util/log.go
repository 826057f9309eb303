package util

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	jww "github.com/spf13/jwalterweatherman"
)

var (
	loggers = map[string]*Logger{}
	levels  = map[string]jww.Threshold{}

	loggersMux sync.Mutex

	// OutThreshold is the default console log level
	OutThreshold = jww.LevelError

	// LogThreshold is the default log file level
	LogThreshold = jww.LevelWarn
)

// LogAreaPadding of log areas
var LogAreaPadding = 8

// Logger wraps a jww notepad with an area name
type Logger struct {
	*jww.Notepad
	name string
}

type redactWriter struct {
	r [][]byte
	w io.Writer
}

var _ io.Writer = (*redactWriter)(nil)

func (r *redactWriter) Write(p []byte) (int, error) {
	b := p
	for _, r := range r.r {
		b = bytes.ReplaceAll(b, r, []byte("***"))
	}
	return r.w.Write(b)
}

// NewLogger creates a logger with the given log area and adds it to the registry
func NewLogger(area string) *Logger {
	loggersMux.Lock()
	defer loggersMux.Unlock()

	if logger, ok := loggers[area]; ok {
		return logger
	}

	padded := area
	for len(padded) < LogAreaPadding {
		padded = padded + " "
	}

	level := logLevelForArea(area)
	notepad := jww.NewNotepad(level, LogThreshold, os.Stdout, io.Discard, padded, log.Ldate|log.Ltime)

	logger := &Logger{
		Notepad: notepad,
		name:    area,
	}
	loggers[area] = logger

	return logger
}

// Name returns the loggers name
func (l *Logger) Name() string {
	return l.name
}

// Redact replaces the given secrets with *** in all log levels
func (l *Logger) Redact(secrets ...string) {
	for _, lg := range []*log.Logger{l.TRACE, l.DEBUG, l.INFO, l.WARN, l.ERROR} {
		red := &redactWriter{w: lg.Writer()}
		for _, s := range secrets {
			if s == "" {
				continue
			}
			red.r = append(red.r, []byte(s), []byte(url.QueryEscape(s)))
		}
		lg.SetOutput(red)
	}
}

// Loggers invokes callback for each configured logger
func Loggers(cb func(string, *Logger)) {
	loggersMux.Lock()
	defer loggersMux.Unlock()

	for name, logger := range loggers {
		cb(name, logger)
	}
}

func logLevelForArea(area string) jww.Threshold {
	level, ok := levels[strings.ToLower(area)]
	if !ok {
		level = OutThreshold
	}
	return level
}

// LogLevel sets log level for all loggers
func LogLevel(defaultLevel string, areaLevels map[string]string) error {
	threshold, err := LogLevelToThreshold(defaultLevel)
	if err != nil {
		return err
	}

	// default level
	OutThreshold = threshold
	LogThreshold = OutThreshold

	// area levels
	for area, level := range areaLevels {
		if levels[strings.ToLower(area)], err = LogLevelToThreshold(level); err != nil {
			return err
		}
	}

	Loggers(func(name string, logger *Logger) {
		logger.SetStdoutThreshold(logLevelForArea(name))
	})

	return nil
}

// LogLevelToThreshold converts log level string to a jww Threshold
func LogLevelToThreshold(level string) (jww.Threshold, error) {
	switch strings.ToUpper(level) {
	case "FATAL":
		return jww.LevelFatal, nil
	case "ERROR":
		return jww.LevelError, nil
	case "WARN":
		return jww.LevelWarn, nil
	case "INFO":
		return jww.LevelInfo, nil
	case "DEBUG":
		return jww.LevelDebug, nil
	case "TRACE":
		return jww.LevelTrace, nil
	default:
		return jww.LevelError, fmt.Errorf("invalid log level: %s", level)
	}
}

type uiWriter struct {
	re    *regexp.Regexp
	level string
	c     chan<- Param
}

func (w *uiWriter) Write(p []byte) (n int, err error) {
	// trim level and timestamp
	s := string(w.re.ReplaceAll(p, []byte{}))

	select {
	case w.c <- Param{
		Key: w.level,
		Val: strings.Trim(strconv.Quote(strings.TrimSpace(s)), "\""),
	}:
	default:
	}

	return len(p), nil
}

var captureRegex = regexp.MustCompile(`^\[[a-zA-Z0-9-]+\s*\] \w+ .{19} `)

// CaptureLogs appends uiWriter to relevant log levels
func CaptureLogs(c chan<- Param) {
	Loggers(func(_ string, l *Logger) {
		captureLogger(c, "warn", l.Notepad.WARN)
		captureLogger(c, "error", l.Notepad.ERROR)
		captureLogger(c, "error", l.Notepad.FATAL)
	})
}

func captureLogger(c chan<- Param, level string, l *log.Logger) {
	ui := &uiWriter{
		re:    captureRegex,
		level: level,
		c:     c,
	}

	l.SetOutput(io.MultiWriter(l.Writer(), ui))
}
