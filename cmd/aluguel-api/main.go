// Command aluguel-api serves the car-rental REST API from memory.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/config"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/aluguel"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
	aluguelapi "github.com/AulusHZP/LabProjetoDeSoftware/services/aluguel/api"
)

func main() {
	var cfg config.AluguelServer
	if err := config.Load(&cfg, ".env"); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.New(aluguelapi.ServiceID, cfg.Level, cfg.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var admin *aluguel.RegisterRequest
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		admin = &aluguel.RegisterRequest{
			Nome:  "Administrador",
			Email: cfg.AdminEmail,
			Senha: cfg.AdminPassword,
			Tipo:  aluguel.UserAdministrador,
		}
	}

	svc := aluguelapi.New(aluguelapi.Config{
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		Admin:       admin,
	})
	if err := svc.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start service")
	}
	if err := svc.Serve(ctx, cfg.Addr, svc); err != nil {
		logger.WithError(err).Fatal("Server error")
	}
}
