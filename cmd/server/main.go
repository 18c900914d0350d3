package main

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/littlenotes/encore/internal/config"
	"github.com/littlenotes/encore/internal/db"
	"github.com/littlenotes/encore/internal/services"
	"github.com/littlenotes/encore/internal/web"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	if err := db.Init(cfg.DatabasePath); err != nil {
		logger.Fatalf("db init: %v", err)
	}

	if cfg.SendgridKey != "" {
		services.SetMailer(services.NewSendgridMailer(cfg.SendgridKey, cfg.FromName, cfg.FromEmail, logger))
	} else {
		logger.Warn("SENDGRID_API_KEY not set; outbound email disabled")
	}

	r := web.Router(cfg)

	logger.Infof("Little Notes registration listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		logger.Fatal(err)
	}
}
