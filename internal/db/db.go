package db

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shinyyama/pharmacy-admin-backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// address resolves DB_HOST into the driver's net(addr) form. A Cloud SQL
// instance name always wins over DB_HOST.
func address(cfg *config.Config) string {
	host := cfg.DBHost
	switch {
	case cfg.InstanceConnectionName != "":
		return "unix(/cloudsql/" + cfg.InstanceConnectionName + ")"
	case strings.HasPrefix(host, "tcp("), strings.HasPrefix(host, "unix("):
		return host
	case strings.HasPrefix(host, "/"):
		return "unix(" + host + ")"
	}
	return "tcp(" + host + ":" + cfg.DBPort + ")"
}

// BuildDSN assembles the MySQL DSN for the activity log database. Times are
// stored in UTC.
func BuildDSN(cfg *config.Config) string {
	return fmt.Sprintf("%s:%s@%s/%s?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DBUser, cfg.DBPassword, address(cfg), cfg.DBName)
}

// Connect opens the activity log database and pings it, retrying a few times
// while Cloud SQL or a local container is still starting.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	conn, err := gorm.Open(mysql.Open(BuildDSN(cfg)), &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	// the activity log is low traffic
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	const attempts = 5
	for i := 1; ; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = sqlDB.PingContext(ctx)
		cancel()
		if err == nil {
			return conn, nil
		}
		if i == attempts {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("ping mysql after %d attempts: %w", attempts, err)
		}
		log.Printf("[db] ping attempt=%d failed: %v", i, err)
		time.Sleep(time.Duration(i) * time.Second)
	}
}
