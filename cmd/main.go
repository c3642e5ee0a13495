package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"blogsite/internal/config"
	"blogsite/internal/logger"
)

// @title        Blog API
// @version      1.0
// @description  Read-only JSON API and live feed of blog posts.
// @BasePath     /
func main() {
	configDir := flag.String("config", "configs", "directory holding config.yml")
	flag.Usage = usage
	flag.Parse()

	// load config.yml, .env and BLOG_* variables
	cfg, err := config.Load(*configDir)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Init(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name, args := "serve", flag.Args()
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}

	a := &app{cfg: cfg, log: log, in: os.Stdin, out: os.Stdout}
	if err := a.run(ctx, name, args); err != nil {
		log.Fatalw("command failed", "command", name, "err", err)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: %s [-config dir] [command] [flags]

Commands:
  serve        run the web server (default)
  initdb       apply database migrations
  dropdb       roll back every migration, dropping all tables
  fakerdb      insert fake posts (-n count)
  createuser   create a user (-username, -name, -email; password is prompted)
`, os.Args[0])
	flag.PrintDefaults()
}
