package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pharmadash/pharmadash/internal/cli"
	"github.com/pharmadash/pharmadash/pkg/config"
	"github.com/pharmadash/pharmadash/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadWithValidation()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	log := logger.New("pharmadash", cfg.Environment)

	app := cli.NewApp(cfg, log)
	defer app.Close()

	return app.Run(context.Background(), os.Args[1:])
}
