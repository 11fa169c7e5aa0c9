// Command labctl is the terminal front end for the MoedaEstudantil and car
// rental APIs. It keeps the signed-in profile in a session file between
// invocations.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/cli"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/config"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
)

func main() {
	var cfg config.CLI
	if err := config.Load(&cfg, ".env"); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := &app{
		cfg: cfg,
		log: logging.New(appName, cfg.Level, cfg.Format),
		out: cli.NewPrinter(os.Stdout),
	}
	code := run(ctx, a, os.Args[1:])
	stop()
	os.Exit(code)
}
