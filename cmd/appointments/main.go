package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/jwalitptl/clinic-dashboard/internal/backend"
	"github.com/jwalitptl/clinic-dashboard/internal/cli"
	"github.com/jwalitptl/clinic-dashboard/internal/listing"
	"github.com/jwalitptl/clinic-dashboard/pkg/logger"
)

func main() {
	assumeYes := flag.Bool("yes", false, "delete without asking for confirmation")
	flag.Parse()

	cfg, err := cli.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		TimeFormat: time.Kitchen,
		Pretty:     true,
		Output:     os.Stderr,
	})

	client, err := backend.NewClient(backend.Config{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.Timeout,
		Token:   cfg.Token,
	}, nil, log.Zerolog())
	if err != nil {
		log.Fatal(err, "failed to create backend client")
	}

	view := listing.NewView(client, listing.Options{
		PageSize:       cfg.PageSize,
		EditPathPrefix: cfg.EditPrefix,
		Logger:         log.Zerolog(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(view, os.Stdin, os.Stdout, cli.Options{
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
		AssumeYes:   *assumeYes,
	})
	if err := app.Run(ctx); err != nil {
		log.Fatal(err, "terminal session failed")
	}
}
