package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/campus-union/voicebox/internal/app"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to an optional YAML config file")
	flag.Usage = usage
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "serve"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case "serve":
		if errRun := app.RunServer(ctx, configPath); errRun != nil {
			log.Fatalf("server failed: %v", errRun)
		}
	case "migrate":
		if errMigrate := app.Migrate(ctx, configPath); errMigrate != nil {
			log.Fatalf("migration failed: %v", errMigrate)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: voicebox [-config file.yaml] [serve|migrate]\n")
	flag.PrintDefaults()
}
