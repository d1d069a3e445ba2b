package utils

import (
	"log/slog"
	"os"
	"time"
)

type Config struct {
	port       string
	sqlitePath string
	location   *time.Location

	scanTimeout    time.Duration
	dedupWindow    time.Duration
	queueRetention time.Duration

	metricCollectionInterval time.Duration
}

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),

		sqlitePath: func() string {
			sqlitePath := os.Getenv("SQLITE_PATH")
			if sqlitePath == "" {
				slog.Warn("SQLITE_PATH is not set, using ./attend.db")
				sqlitePath = "./attend.db"
			}
			slog.Debug("env", "SQLITE_PATH", sqlitePath)
			return sqlitePath
		}(),

		location: func() *time.Location {
			timezoneStr := os.Getenv("TIMEZONE")
			var loc *time.Location
			var err error
			switch timezoneStr {
			case "":
				slog.Warn("TIMEZONE is not set, using local timezone", "timezone", time.Local)
				loc = time.Local
			case "UTC":
				loc = time.UTC
			default:
				loc, err = time.LoadLocation(timezoneStr)
				if err != nil {
					slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
					os.Exit(1)
				}
			}
			slog.Debug("env", "TIMEZONE", timezoneStr)
			return loc
		}(),

		scanTimeout: func() time.Duration {
			scanTimeout := os.Getenv("SCAN_TIMEOUT")
			if scanTimeout == "" {
				scanTimeout = "5s"
			}
			duration, err := time.ParseDuration(scanTimeout)
			if err != nil {
				slog.Error("invalid SCAN_TIMEOUT", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "SCAN_TIMEOUT", scanTimeout, "duration", duration)
			return duration
		}(),

		dedupWindow: func() time.Duration {
			dedupWindow := os.Getenv("DEDUP_WINDOW")
			if dedupWindow == "" {
				dedupWindow = "10s"
			}
			duration, err := time.ParseDuration(dedupWindow)
			if err != nil {
				slog.Error("invalid DEDUP_WINDOW", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "DEDUP_WINDOW", dedupWindow, "duration", duration)
			return duration
		}(),

		queueRetention: func() time.Duration {
			queueRetention := os.Getenv("QUEUE_RETENTION")
			if queueRetention == "" {
				queueRetention = "5m"
			}
			duration, err := time.ParseDuration(queueRetention)
			if err != nil {
				slog.Error("invalid QUEUE_RETENTION", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "QUEUE_RETENTION", queueRetention, "duration", duration)
			return duration
		}(),

		metricCollectionInterval: func() time.Duration {
			interval := os.Getenv("METRIC_COLLECTION_INTERVAL")
			if interval == "" {
				interval = "60s"
			}
			duration, err := time.ParseDuration(interval)
			if err != nil {
				slog.Error("invalid METRIC_COLLECTION_INTERVAL", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "METRIC_COLLECTION_INTERVAL", interval, "duration", duration)
			return duration
		}(),
	}
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get SQLITE_PATH env, default to ./attend.db
func (c *Config) GetSqlitePath() string {
	return c.sqlitePath
}

// Get TIMEZONE env; check-in days are scoped to this location
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get SCAN_TIMEOUT env, the budget for one whole scan pipeline
func (c *Config) GetScanTimeout() time.Duration {
	return c.scanTimeout
}

// Get DEDUP_WINDOW env, how long an identical tag counts as a duplicate delivery
func (c *Config) GetDedupWindow() time.Duration {
	return c.dedupWindow
}

// Get QUEUE_RETENTION env, how long unclaimed hardware scans stay queued
func (c *Config) GetQueueRetention() time.Duration {
	return c.queueRetention
}

// Get METRIC_COLLECTION_INTERVAL env
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}
