package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"invoice_recorder/internal/config/connections/mongo"
	"invoice_recorder/internal/config/connections/postgres"
	"invoice_recorder/internal/config/connections/s3"
	"invoice_recorder/internal/logger"

	"github.com/joho/godotenv"
)

// Settings is the plain environment view; Init turns it into live connections.
type Settings struct {
	Port            string
	MaxUploadMB     int64
	InvoicePageSize int

	Log      logger.LogConfig
	Postgres postgres.ConnectionInfo
	Mongo    mongo.ConnectionInfo
	S3       s3.ConnectionInfo
}

type Config struct {
	Settings

	S3       *s3.S3
	Mongo    *mongo.Mongo
	Postgres *postgres.Postgres
}

// Load reads .env (when present) and the environment.
func Load() Settings {
	_ = godotenv.Load()

	return Settings{
		Port:            getenv("SERVER_PORT", "8070"),
		MaxUploadMB:     int64(getenvInt("IMPORT_MAX_UPLOAD_MB", 32)),
		InvoicePageSize: getenvInt("INVOICE_PAGE_SIZE", 50),
		Log: logger.LogConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "console"),
			Output: getenv("LOG_OUTPUT", "stdout"),
		},
		S3: s3.ConnectionInfo{
			Endpoint:  getenv("AWS_ENDPOINT", "localhost:9000"),
			AccessKey: getenv("AWS_ACCESS_KEY_ID", "minioadmin"),
			SecretKey: getenv("AWS_SECRET_ACCESS_KEY", "minioadmin"),
			Region:    getenv("AWS_DEFAULT_REGION", "us-east-1"),
			Bucket:    getenv("AWS_BUCKET", "invoices"),
			UseSSL:    getenv("AWS_USE_SSL", "false") == "true",
		},
		Mongo: mongo.ConnectionInfo{
			Scheme:     getenv("MONGO_SCHEME", "mongodb"),
			User:       getenv("MONGO_USER", "root"),
			Password:   getenv("MONGO_PASSWORD", "secret"),
			Host:       getenv("MONGO_HOST", "127.0.0.1"),
			Port:       getenv("MONGO_PORT", "27017"),
			DB:         getenv("MONGO_DB", "invoice_imports"),
			AuthSource: getenv("MONGO_AUTH_SOURCE", "admin"),
		},
		Postgres: postgres.ConnectionInfo{
			Host:     getenv("PG_HOST", "127.0.0.1"),
			Port:     getenv("PG_PORT", "5432"),
			User:     getenv("PG_USER", "root"),
			Password: getenv("PG_PASSWORD", "hello-world"),
			DB:       getenv("PG_DB", "invoices"),
			SSLMode:  getenv("PG_SSLMODE", "disable"),
			MaxConns: int32(getenvInt("PG_MAX_CONNS", 10)),
		},
	}
}

// Init opens every connection. Errors are joined so one run reports all of
// the broken backends.
func Init(ctx context.Context, st Settings) (*Config, error) {
	cfg := &Config{Settings: st}
	var errs []error

	s3c, err := s3.NewConnection(st.S3)
	if err != nil {
		errs = append(errs, fmt.Errorf("s3 connect: %w", err))
	} else {
		cfg.S3 = s3c
	}

	mg, err := mongo.NewConnection(ctx, st.Mongo)
	if err != nil {
		errs = append(errs, fmt.Errorf("mongo connect: %w", err))
	} else {
		cfg.Mongo = mg
	}

	pg, err := postgres.NewConnection(ctx, st.Postgres)
	if err != nil {
		errs = append(errs, fmt.Errorf("postgres connect: %w", err))
	} else {
		cfg.Postgres = pg
	}

	return cfg, errors.Join(errs...)
}

func (c *Config) CheckConnections(ctx context.Context) error {
	var errs []error

	if c.Postgres == nil || c.Postgres.Pool == nil {
		errs = append(errs, errors.New("postgres not initialized"))
	} else if err := c.Postgres.Pool.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("postgres ping failed: %w", err))
	}

	if c.Mongo == nil || c.Mongo.Client == nil {
		errs = append(errs, errors.New("mongo not initialized"))
	} else if err := c.Mongo.Client.Ping(ctx, nil); err != nil {
		errs = append(errs, fmt.Errorf("mongo ping failed: %w", err))
	}

	if c.S3 == nil || c.S3.Client == nil {
		errs = append(errs, errors.New("s3 not initialized"))
	} else if ok, err := c.S3.Client.BucketExists(ctx, c.S3.Bucket); err != nil {
		errs = append(errs, fmt.Errorf("s3 bucket check failed: %w", err))
	} else if !ok {
		errs = append(errs, fmt.Errorf("s3 bucket %q not found", c.S3.Bucket))
	}

	return errors.Join(errs...)
}

func (c *Config) Close(ctx context.Context) {
	if c.Postgres != nil {
		c.Postgres.Close()
	}
	if c.Mongo != nil {
		_ = c.Mongo.Close(ctx)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
