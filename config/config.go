package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/opskitchen/resto-ops/services"
)

// InitDB opens the database chosen by DB_DRIVER. MySQL is the production
// default; sqlite serves local development.
func InitDB() (*gorm.DB, error) {
	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "mysql"
	}

	switch driver {
	case "sqlite":
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "resto-ops.db"
		}
		return gorm.Open(sqlite.Open(path), &gorm.Config{})
	case "mysql":
		dsn := os.Getenv("DB_DSN")
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
				envOr("DB_HOST", "127.0.0.1"), envOr("DB_PORT", "3306"),
				envOr("DB_NAME", "resto_ops"))
		}
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// SuggestionConfig builds the engine config from the environment, falling
// back to the defaults. The constants are tuning choices, so deployments
// may override them without a rebuild.
func SuggestionConfig() services.SuggestionConfig {
	cfg := services.DefaultSuggestionConfig()
	if v := envInt("SUGGESTION_MIN_WEIGHT"); v > 0 {
		cfg.MinEvidenceWeight = v
	}
	if v := envInt("SUGGESTION_CORROBORATION_BONUS"); v > 0 {
		cfg.CorroborationBonus = v
	}
	if v := envInt("SUGGESTION_CORROBORATION_CAP"); v > 0 {
		cfg.CorroborationCap = v
	}
	if v := envInt("SUGGESTION_MANUAL_WINDOW_SEC"); v > 0 {
		cfg.ManualActivityWindow = time.Duration(v) * time.Second
	}
	if v := envInt("SUGGESTION_PENDING_WINDOW_SEC"); v > 0 {
		cfg.PendingWindow = time.Duration(v) * time.Second
	}
	return cfg
}

// ScanInterval returns the 86 background scan interval; zero disables the
// scanner (the scan endpoint still works).
func ScanInterval() time.Duration {
	if v := envInt("EIGHTY_SIX_SCAN_INTERVAL_SEC"); v > 0 {
		return time.Duration(v) * time.Second
	}
	return 0
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}
