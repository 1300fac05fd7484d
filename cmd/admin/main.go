package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/taskapi/internal/admincli"
	"github.com/dmitrijs2005/taskapi/internal/logging"
	"github.com/dmitrijs2005/taskapi/internal/server"
	"github.com/dmitrijs2005/taskapi/internal/server/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel)

	if err := admincli.CheckDSN(cfg.DatabaseDSN); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	b, err := server.OpenBackend(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = admincli.New(b.Users, os.Stdin, os.Stdout).Run(ctx, os.Args[1:])
	_ = b.Close(ctx)

	if err != nil {
		if !errors.Is(err, admincli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2)
	}
}
