package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/PavaniTiago/workflow-insights-api/internal/config"
	"github.com/PavaniTiago/workflow-insights-api/internal/interfaces/cli"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if err := cli.NewBackupCommand(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
