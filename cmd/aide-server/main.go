package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"aide/internal/assistant"
	"aide/internal/calendar"
	"aide/internal/config"
	"aide/internal/ipc"
	"aide/internal/joke"
	"aide/internal/proxy"
	"aide/internal/reminder"
	"aide/internal/server"
	"aide/internal/weather"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	addr := cli.StringP("addr", "a", "", "HTTP listen address (overrides AIDE_ADDR)")
	socket := cli.StringP("socket", "s", "", "Control socket path (overrides AIDE_SOCKET)")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	debug := cli.BoolP("debug", "d", false, "Verbose HTTP logging")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	cfg := config.Load(*envFile)
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *socket != "" {
		cfg.SocketPath = *socket
	}

	weatherHTTP, err := proxy.NewHTTPClient(cfg.ProxyAddr, 10*time.Second)
	if err != nil {
		log.Error("Failed to dial socks proxy", "proxy", cfg.ProxyAddr, "err", err)
		os.Exit(1)
	}
	jokeHTTP, err := proxy.NewHTTPClient(cfg.ProxyAddr, 5*time.Second)
	if err != nil {
		log.Error("Failed to dial socks proxy", "proxy", cfg.ProxyAddr, "err", err)
		os.Exit(1)
	}

	store := reminder.Open(cfg.ReminderFile)

	var weatherSvc assistant.WeatherService
	if cfg.WeatherAPIKey != "" {
		weatherSvc = weather.NewClient(cfg.WeatherAPIKey, weatherHTTP)
	}

	var calendarSvc assistant.CalendarService
	if _, err := os.Stat(cfg.CredentialsFile); err == nil {
		calendarSvc = calendar.NewClient(cfg.Timezone, cfg.CredentialsFile, cfg.TokenFile)
	}

	a := assistant.New(assistant.Options{
		Store:       store,
		Weather:     weatherSvc,
		Jokes:       joke.NewClient(jokeHTTP),
		Calendar:    calendarSvc,
		DefaultCity: cfg.DefaultCity,
		Timezone:    cfg.Timezone,
		Location:    cfg.Location,
	})

	if err := ipc.StartServer(cfg.SocketPath, func(ctx context.Context, query string) string {
		return a.Dispatch(ctx, query)
	}); err != nil {
		log.Error("Failed to start control socket", "path", cfg.SocketPath, "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Boot up - successful")

	srv := server.New(a, server.Config{Addr: cfg.Addr, Debug: *debug})
	if err := srv.Run(ctx); err != nil {
		log.Error("HTTP server failed", "err", err)
		os.Exit(1)
	}
}
