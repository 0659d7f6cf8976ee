package integration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/password-manager-in-go/pkg/audit"
	"github.com/doodlesbykumbi/password-manager-in-go/pkg/db"
	"github.com/doodlesbykumbi/password-manager-in-go/pkg/logging"
	"github.com/doodlesbykumbi/password-manager-in-go/pkg/passwords"
	gormstore "github.com/doodlesbykumbi/password-manager-in-go/pkg/store/gorm"
)

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	RawDB       *sql.DB
	Container   testcontainers.Container
	DatabaseURL string
	Manager     *passwords.Manager
	Log         *logrus.Logger
}

// NewTestContext starts a PostgreSQL testcontainer, applies the embedded
// migrations and builds a Manager on top of the GORM stores.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("passmgr_test"),
		tcpostgres.WithUsername("passmgr"),
		tcpostgres.WithPassword("passmgr"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	if err := runMigrations(connStr); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	database, err := db.Connect(db.Config{URL: connStr})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	rawDB, err := database.DB()
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get raw db: %w", err)
	}

	log := logging.New("warn")
	auditLogger := audit.NewLogger()
	auditLogger.SetWriter(log.WriterLevel(logrus.DebugLevel))

	manager := passwords.NewManager(
		gormstore.NewHistoryStore(database),
		gormstore.NewExpiryStore(database),
		passwords.WithHealthStore(gormstore.NewHealthStore(database)),
		passwords.WithLogger(log),
		passwords.WithAuditor(audit.NewAuditor(auditLogger, audit.NewStoreWithDB(rawDB), log)),
	)

	return &TestContext{
		DB:          database,
		RawDB:       rawDB,
		Container:   pgContainer,
		DatabaseURL: connStr,
		Manager:     manager,
		Log:         log,
	}, nil
}

func runMigrations(connStr string) error {
	migrator, err := db.NewMigrator(connStr, "")
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()

	_, err = migrator.Up()
	return err
}

// Reset empties every table between scenarios
func (tc *TestContext) Reset(ctx context.Context) error {
	_, err := tc.RawDB.ExecContext(ctx,
		`TRUNCATE users, password_history, password_expiry, messages RESTART IDENTITY CASCADE`)
	return err
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.RawDB != nil {
		_ = tc.RawDB.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}
