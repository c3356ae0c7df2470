package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bluecore-studio/crm-api/pkg/models"
)

// Client holds the database handle.
type Client struct {
	DB *gorm.DB
}

// NewClient opens the database and applies migrations. The dialect is
// picked from the DSN: postgres:// URLs use the postgres driver, anything
// else is treated as a SQLite path.
func NewClient(databaseURL string) (*Client, error) {
	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		dialector = postgres.Open(databaseURL)
	default:
		// SQLite needs foreign keys switched on per connection for the
		// lead-children cascade rules to hold.
		if !strings.Contains(databaseURL, "_fk=") {
			sep := "?"
			if strings.Contains(databaseURL, "?") {
				sep = "&"
			}
			databaseURL += sep + "_fk=1"
		}
		dialector = sqlite.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed opening database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("✅ Database connected and migrations applied")

	return &Client{DB: db}, nil
}

// Migrate creates or updates the CRM schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Lead{},
		&models.Activity{},
		&models.FollowUp{},
		&models.LeadContact{},
		&models.LeadNote{},
		&models.Tag{},
		&models.LeadTag{},
		&models.FundingRound{},
		&models.DailyReport{},
		&models.DataRoomDocument{},
	); err != nil {
		return fmt.Errorf("failed running migrations: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks if the database is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
