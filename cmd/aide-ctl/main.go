package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	cli "github.com/spf13/pflag"

	"aide/internal/calendar"
	"aide/internal/config"
	"aide/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Control socket path")
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	authCalendar := cli.Bool("auth-calendar", false, "Run the Google Calendar consent flow and cache the token")
	cli.Parse()

	if *authCalendar {
		cfg := config.Load(*envFile)
		cl := calendar.NewClient(cfg.Timezone, cfg.CredentialsFile, cfg.TokenFile)
		if err := cl.Setup(context.Background()); err != nil {
			fmt.Println("calendar authorization failed:", err)
			os.Exit(1)
		}
		return
	}

	query := strings.Join(cli.Args(), " ")
	if query == "" {
		fmt.Println("usage: aide-ctl [flags] <command text>")
		os.Exit(2)
	}

	reply, err := ipc.Send(*socket, query)
	if err != nil {
		fmt.Println("aide-server not running:", err)
		os.Exit(1)
	}
	fmt.Println(reply)
}
