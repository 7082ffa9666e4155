package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeFormat = "2006-01-02T15:04:05.000"

// Options control where and how verbosely the application logs.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// File, when set, adds a rotating log file next to the console output.
	File string
	// NoColor disables console colors, for CI logs.
	NoColor bool
}

// Setup builds the root logger. Console output goes through the zerolog
// console writer; file output rotates at 50MB keeping five backups.
func Setup(opts Options) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(opts.Level))

	console := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		NoColor:    opts.NoColor,
		TimeFormat: timeFormat,
	}

	var out io.Writer = console
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}
		out = io.MultiWriter(console, rotating)
	}

	return zerolog.New(out).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// LLMInteraction records one prompt/response exchange with the language
// model at debug level, including failures.
func LLMInteraction(log zerolog.Logger, operation string, prompt string, output string, err error) {
	event := log.Debug().
		Str("llm_operation", operation).
		Int("prompt_chars", len(prompt))
	if err != nil {
		event.Err(err).Msg("LLM call failed")
		return
	}
	event.Int("output_chars", len(output)).Msg("LLM call completed")
}
