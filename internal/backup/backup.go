// Package backup snapshots the SQLite database to S3-compatible storage on
// a timer. The local cache file is deliberately not backed up: it is a
// degraded-availability fallback, not a system of record.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup manager configuration.
type Config struct {
	S3       S3Config
	Interval time.Duration
}

type Manager struct {
	mu     sync.Mutex
	cfg    Config
	db     *sql.DB
	client s3Client
	logger *slog.Logger

	lastBackup time.Time
}

// NewManager creates a backup manager. It stays disabled unless a bucket
// and credentials are configured.
func NewManager(cfg Config, db *sql.DB, logger *slog.Logger) *Manager {
	if cfg.Interval == 0 {
		cfg.Interval = 24 * time.Hour
	}
	m := &Manager{cfg: cfg, db: db, logger: logger}
	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" {
		m.client = newS3Client(cfg.S3)
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether backups will run.
func (m *Manager) Enabled() bool {
	return m.client != nil
}

// Start runs periodic backups until the context is cancelled.
func (m *Manager) Start(ctx context.Context) {
	if !m.Enabled() {
		m.logger.Info("backups disabled: no s3 configuration")
		return
	}

	go func() {
		ticker := time.NewTicker(m.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := m.Backup(ctx); err != nil {
					m.logger.Error("backup failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Backup snapshots the database with VACUUM INTO and uploads the snapshot.
func (m *Manager) Backup(ctx context.Context) error {
	if !m.Enabled() {
		return fmt.Errorf("backup not configured")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tmpDir, err := os.MkdirTemp("", "quicktrade-backup")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	snapshot := filepath.Join(tmpDir, "snapshot.db")
	if _, err := m.db.ExecContext(ctx, `VACUUM INTO ?`, snapshot); err != nil {
		return fmt.Errorf("vacuum into snapshot: %w", err)
	}

	data, err := os.ReadFile(snapshot)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	key := fmt.Sprintf("backups/quicktrade-%s.db", time.Now().UTC().Format("20060102T150405Z"))
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("upload snapshot: %w", err)
	}

	m.lastBackup = time.Now().UTC()
	m.logger.Info("backup uploaded", "key", key, "bytes", len(data))
	return nil
}

// LastBackup returns the time of the most recent successful backup.
func (m *Manager) LastBackup() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastBackup
}
