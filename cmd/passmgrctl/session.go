package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/password-manager-in-go/pkg/audit"
	"github.com/doodlesbykumbi/password-manager-in-go/pkg/config"
	"github.com/doodlesbykumbi/password-manager-in-go/pkg/db"
	"github.com/doodlesbykumbi/password-manager-in-go/pkg/logging"
	"github.com/doodlesbykumbi/password-manager-in-go/pkg/passwords"
	gormstore "github.com/doodlesbykumbi/password-manager-in-go/pkg/store/gorm"
)

// session bundles what a database-backed command needs
type session struct {
	cfg     *config.Config
	log     *logrus.Logger
	manager *passwords.Manager
	close   func()
}

func openSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logging.New(cfg.LogLevel)

	database, err := db.Connect(db.Config{LogLevel: cfg.LogLevel})
	if err != nil {
		return nil, err
	}

	auditStore, err := audit.NewStore()
	if err != nil {
		closeDB(database)
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	auditLogger := audit.NewLogger()
	auditLogger.SetWriter(os.Stderr)

	manager := passwords.NewManager(
		gormstore.NewHistoryStore(database),
		gormstore.NewExpiryStore(database),
		passwords.WithHealthStore(gormstore.NewHealthStore(database)),
		passwords.WithLogger(log),
		passwords.WithAuditor(audit.NewAuditor(auditLogger, auditStore, log)),
	)

	return &session{
		cfg:     cfg,
		log:     log,
		manager: manager,
		close: func() {
			if auditStore != nil {
				_ = auditStore.Close()
			}
			closeDB(database)
		},
	}, nil
}

func closeDB(database *gorm.DB) {
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// historyPolicy turns the configured history life into a Policy, mapping
// configuration problems to *passwords.ConfigurationError
func historyPolicy(cfg *config.Config) (passwords.Policy, error) {
	life, err := cfg.HistoryLife()
	if err != nil {
		cfgErr := &passwords.ConfigurationError{Setting: passwords.HistoryLifeSetting, Reason: err.Error()}
		var settingErr *config.SettingError
		if errors.As(err, &settingErr) {
			cfgErr.Value = settingErr.Value
			cfgErr.Reason = settingErr.Reason
		}
		return passwords.Policy{}, cfgErr
	}
	return passwords.Policy{HistoryLife: life}, nil
}

func parseUserID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q: must be a positive integer", arg)
	}
	return id, nil
}
