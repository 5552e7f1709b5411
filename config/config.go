package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds the application's configuration values.
type Config struct {
	AppName  string `json:"appname"`
	AppEnv   string `json:"appenv"`
	Timezone string `json:"timezone"`

	DatabaseURL string `json:"database_url"`
	DBHost      string `json:"dbhost"`
	DBPort      uint16 `json:"dbport"`
	DBName      string `json:"dbname"`
	DBUSER      string `json:"dbuser"`
	DBPass      string `json:"dbpass"`

	// IdentifierCounter selects the sequence backend: "table" or "redis".
	IdentifierCounter string `json:"identifier_counter"`
	PatientCacheSize  int    `json:"patient_cache_size"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

var config *Config
var once sync.Once

// LoadConfig loads the environment variables from a .env file, and returns a singleton Config instance.
// A missing .env file is not an error; the process environment is used as is.
func LoadConfig() *Config {
	once.Do(func() {
		_ = godotenv.Load()

		dbPort, _ := strconv.ParseUint(os.Getenv("DBPORT"), 10, 16)
		cacheSize, _ := strconv.Atoi(os.Getenv("PATIENT_CACHE_SIZE"))

		config = &Config{
			AppName:           getEnv("APPNAME", "hospital-core"),
			AppEnv:            os.Getenv("APPENV"),
			Timezone:          getEnv("APP_TIMEZONE", "Local"),
			DatabaseURL:       os.Getenv("DATABASE_URL"),
			DBHost:            os.Getenv("DBHOST"),
			DBPort:            uint16(dbPort),
			DBName:            os.Getenv("DBNAME"),
			DBUSER:            os.Getenv("DBUSER"),
			DBPass:            os.Getenv("DBPASS"),
			IdentifierCounter: strings.ToLower(getEnv("IDENTIFIER_COUNTER", "table")),
			PatientCacheSize:  cacheSize,
			LogLevel:          getEnv("LOG_LEVEL", "info"),
			LogFormat:         getEnv("LOG_FORMAT", "console"),
		}
	})
	// APPENV is re-read so tests can switch to the in-memory store after the first load.
	config.AppEnv = os.Getenv("APPENV")
	return config
}

// Location returns the time zone identifier scopes are derived in.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Dialector picks the gorm dialector for the configured data store.
// APPENV=test always selects an in-memory SQLite database.
func (c *Config) Dialector() gorm.Dialector {
	if c.AppEnv == "test" {
		dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
		return sqlite.Open(dsn)
	}

	url := c.DatabaseURL
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url)
	case strings.HasPrefix(url, "mysql://"):
		return mysql.Open(strings.TrimPrefix(url, "mysql://"))
	case url != "":
		return mysql.Open(url)
	}

	// Build the Data Source Name (DSN) using the configuration values.
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", c.DBUSER, c.DBPass, c.DBHost, c.DBPort, c.DBName)
	return mysql.Open(dsn)
}

// ConnectDatabase establishes a connection to the configured relational store.
func ConnectDatabase() (*gorm.DB, error) {
	cfg := LoadConfig()

	gormCfg := &gorm.Config{}
	if cfg.AppEnv != "test" {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(cfg.Dialector(), gormCfg)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	return value
}
