package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"

	app "github.com/rocketscienceinc/connectfour-backend/internal"
	"github.com/rocketscienceinc/connectfour-backend/internal/config"
)

var CLI struct {
	Config    string `short:"c" default:"config.yml" help:"Path to YAML configuration file" type:"path"`
	LogLevel  string `short:"l" help:"Log level (overrides config)" enum:",debug,info,warn,error" default:""`
	LogFormat string `help:"Log format: json or text (overrides config)" enum:",json,text" default:""`
}

// main - is the entry point of the application. It initializes the configuration, logger, and runs the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	kong.Parse(&CLI,
		kong.Name("connectfour-server"),
		kong.Description("Two-player connect-four game server."),
	)

	conf := initConfig()
	logger := initLogger(conf)

	if err := app.RunApp(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// initialize config.
func initConfig() *config.Config {
	conf := config.MustLoad(CLI.Config)

	if CLI.LogLevel != "" {
		conf.LogLevel = CLI.LogLevel
	}
	if CLI.LogFormat != "" {
		conf.LogFormat = CLI.LogFormat
	}

	return conf
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	level := slog.LevelInfo

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if conf.LogFormat == "text" {
		handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
		})

		return slog.New(handler)
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
