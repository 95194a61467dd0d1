// Package db constructs the shared database handles: Postgres for the
// durable room store and Redis for presence and rate limiting.
package db

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

type DB struct {
	Postgres *sql.DB
	Redis    *redis.Client
}

// New creates and initializes database connections. Postgres is required;
// Redis is optional and the server runs degraded without it.
func New(postgresURL, redisURL, redisPassword string) (*DB, error) {
	if postgresURL == "" {
		return nil, fmt.Errorf("postgres URL is required")
	}

	pg, err := sql.Open("postgres", postgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	// Configure connection pool
	pg.SetMaxOpenConns(25)
	pg.SetMaxIdleConns(5)
	pg.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pg.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	log.Println("[DB] PostgreSQL connection established")

	rdb := newRedis(redisURL, redisPassword)
	if rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v (continuing without Redis)", err)
			rdb = nil
		} else {
			log.Println("[DB] Redis connection established")
		}
	}

	return &DB{
		Postgres: pg,
		Redis:    rdb,
	}, nil
}

// newRedis supports both "host:port" and "redis://..." URL formats.
func newRedis(redisURL, password string) *redis.Client {
	if redisURL == "" {
		return nil
	}

	opts := &redis.Options{
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DB:           0,
	}

	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		parsedURL, err := url.Parse(redisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v (continuing without Redis)", err)
			return nil
		}
		opts.Addr = parsedURL.Host
		if parsedURL.User != nil {
			opts.Username = parsedURL.User.Username()
			if pw, ok := parsedURL.User.Password(); ok {
				opts.Password = pw
			}
		}
		// Use TLS for rediss:// scheme
		if parsedURL.Scheme == "rediss" {
			opts.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}
	} else {
		// Simple host:port format
		opts.Addr = redisURL
		opts.Password = password
	}

	return redis.NewClient(opts)
}

// Close closes all database connections.
func (db *DB) Close() error {
	var errs []error

	if db.Postgres != nil {
		if err := db.Postgres.Close(); err != nil {
			errs = append(errs, fmt.Errorf("postgres close error: %w", err))
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close error: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing databases: %v", errs)
	}

	return nil
}

// Health checks database health.
func (db *DB) Health(ctx context.Context) error {
	if err := db.Postgres.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres health check failed: %w", err)
	}

	// Check Redis (optional)
	if db.Redis != nil {
		if err := db.Redis.Ping(ctx).Err(); err != nil {
			log.Printf("[WARN] Redis health check failed: %v", err)
		}
	}

	return nil
}
