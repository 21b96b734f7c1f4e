// Package logger configures the global zerolog logger for the application.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// Options are the level overrides usually bound to --debug, --trace and --info.
type Options struct {
	Debug bool
	Trace bool
	Info  bool

	// Out defaults to stderr so stdout stays free for command output.
	Out io.Writer
}

// Level resolves the log level for an environment name and the overrides.
// Explicit overrides win over the environment.
func Level(environment string, opts Options) zerolog.Level {
	var level zerolog.Level
	switch strings.ToLower(environment) {
	case "dev", "test":
		level = zerolog.TraceLevel
	default:
		level = zerolog.InfoLevel
	}

	switch {
	case opts.Debug:
		level = zerolog.DebugLevel
	case opts.Trace:
		level = zerolog.TraceLevel
	case opts.Info:
		level = zerolog.InfoLevel
	}
	return level
}

// Init sets up the global logger with console output. Call it once from
// whichever entrypoint runs, after flags are parsed:
//
//	logger.Init(logger.Options{Debug: debug})
func Init(opts Options) {
	// A missing .env is normal outside of deployments.
	envErr := godotenv.Load()

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out}).With().Caller().Logger()

	environment := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if environment == "" {
		environment = "prod"
	}

	level := Level(environment, opts)
	zerolog.SetGlobalLevel(level)

	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file loaded")
	}
	log.Debug().Str("environment", environment).Str("level", level.String()).Msg("logger initialised")
}
