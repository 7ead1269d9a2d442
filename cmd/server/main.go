// Package main - Entry point for the cleanquote API server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cleanquote/cmd/cli/cmd"
	"cleanquote/internal/config"
	"cleanquote/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "Config file, JSON or YAML")
	addr := flag.String("addr", "", "Server address (overrides server.addr)")
	company := flag.String("company", "CleanQuote", "Company name printed on quote PDFs")
	flag.Parse()

	if err := run(*configPath, *addr, *company); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, addr, company string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return cmd.Serve(ctx, cfg, company)
}
