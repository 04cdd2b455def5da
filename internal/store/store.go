// Package store persists qBittorrent session snapshots so a restarted
// bridge can reuse its cookie instead of logging in again.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pokerjest/qbittorrent-go/pkg/qbittorrent"
)

// SessionRecord is one saved session, keyed by the WebUI base URL.
type SessionRecord struct {
	BaseURL   string `gorm:"primaryKey"`
	SID       string
	Expires   time.Time
	Version   string
	UpdatedAt time.Time
}

type Store struct {
	db *gorm.DB
}

// Open opens or creates the database at path. ":memory:" is accepted.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// SQLite allows one writer, and every :memory: connection is its own
	// database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&SessionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveSession upserts the snapshot for baseURL.
func (s *Store) SaveSession(ctx context.Context, baseURL string, state qbittorrent.SessionState) error {
	rec := SessionRecord{
		BaseURL: baseURL,
		SID:     state.SID,
		Expires: state.Expires,
		Version: state.Version,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadSession returns the snapshot saved for baseURL. ok is false when
// none exists.
func (s *Store) LoadSession(ctx context.Context, baseURL string) (state qbittorrent.SessionState, ok bool, err error) {
	var rec SessionRecord
	err = s.db.WithContext(ctx).Where("base_url = ?", baseURL).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return qbittorrent.SessionState{}, false, nil
	}
	if err != nil {
		return qbittorrent.SessionState{}, false, fmt.Errorf("load session: %w", err)
	}
	return qbittorrent.SessionState{
		SID:     rec.SID,
		Expires: rec.Expires,
		Version: rec.Version,
	}, true, nil
}

// DeleteSession forgets the snapshot for baseURL.
func (s *Store) DeleteSession(ctx context.Context, baseURL string) error {
	return s.db.WithContext(ctx).Delete(&SessionRecord{}, "base_url = ?", baseURL).Error
}
