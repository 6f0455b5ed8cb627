package app

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/LoreWasTaken/caresync/internal/config"
	"github.com/LoreWasTaken/caresync/internal/db"
	adherencedomain "github.com/LoreWasTaken/caresync/internal/domain/adherence"
	caregiverdomain "github.com/LoreWasTaken/caresync/internal/domain/caregiver"
	medicationdomain "github.com/LoreWasTaken/caresync/internal/domain/medication"
	prescriptiondomain "github.com/LoreWasTaken/caresync/internal/domain/prescription"
	statsdomain "github.com/LoreWasTaken/caresync/internal/domain/stats"
	userdomain "github.com/LoreWasTaken/caresync/internal/domain/user"
	adherencerepo "github.com/LoreWasTaken/caresync/internal/repository/postgres/adherence"
	caregiverrepo "github.com/LoreWasTaken/caresync/internal/repository/postgres/caregiver"
	medicationrepo "github.com/LoreWasTaken/caresync/internal/repository/postgres/medication"
	statsrepo "github.com/LoreWasTaken/caresync/internal/repository/postgres/stats"
	userrepo "github.com/LoreWasTaken/caresync/internal/repository/postgres/user"
	"github.com/LoreWasTaken/caresync/internal/transport/httpserver"
	"github.com/LoreWasTaken/caresync/internal/transport/httpserver/handler"
	"github.com/LoreWasTaken/caresync/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database", "driver", cfg.DB.Driver)
	dbConn, err := db.Open(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	users := userdomain.NewService(userrepo.NewPostgres(dbConn))
	caregiverRepo := caregiverrepo.NewPostgres(dbConn)
	caregivers := caregiverdomain.NewService(caregiverRepo, users)
	gate := caregiverdomain.NewGate(caregiverRepo)
	medications := medicationdomain.NewService(medicationrepo.NewPostgres(dbConn))
	adherence := adherencedomain.NewService(adherencerepo.NewPostgres(dbConn))
	stats := statsdomain.NewService(statsrepo.NewPostgres(dbConn))

	var parser prescriptiondomain.Parser
	if cfg.Parser.URL != "" {
		parser = prescriptiondomain.NewParserClient(cfg.Parser.URL, cfg.Parser.Timeout)
	}
	prescriptions := prescriptiondomain.NewService(parser, medications)
	reports := handler.NewReportRenderer(cfg.Reports.URL, cfg.Reports.Timeout)

	handlers := handler.New(users, gate, caregivers, medications, adherence, stats, prescriptions, reports, log)

	log.Info("app: initializing http server")
	router := httpserver.NewRouter(cfg, handlers, users, log)
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
