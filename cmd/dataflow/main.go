package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	envLogLevel      = "DATAFLOW_LOG_LEVEL"
	envQueueCapacity = "DATAFLOW_QUEUE_CAPACITY"
)

var (
	log zerolog.Logger

	logLevelFlag      string
	queueCapacityFlag int

	rootCmd = &cobra.Command{
		Use:           "dataflow",
		Short:         "Load, inspect and drive agent networks built on topics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(logLevelFlag)
			if err != nil {
				return err
			}
			setupLogging(level)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", envOr(envLogLevel, "info"), "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().IntVar(&queueCapacityFlag, "queue-capacity", envInt(envQueueCapacity, 0), "queue capacity of each agent, 0 keeps the configuration's value")

	rootCmd.AddCommand(validateCmd, graphCmd, publishCmd, schemaCmd)
	setupLogging(slog.LevelInfo)
}

func setupLogging(level slog.Level) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log = zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: level}),
	))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, err
	}
	return level, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(envOr(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("dataflow failed")
		stop()
		os.Exit(1)
	}
}
