// Package history persists a per-request generation audit trail.
package history

import (
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"aura-bridge/internal/logging"
)

// Record is one completed generation attempt as seen at the task boundary.
type Record struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Task          string    `json:"task" gorm:"index"`
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	Success       bool      `json:"success"`
	Fallback      bool      `json:"fallback"`
	ContentLength int       `json:"content_length"`
	DurationMS    int64     `json:"duration_ms"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
}

// Store wraps the history table.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres when databaseURL is set, otherwise to a local
// sqlite file, and migrates the history table.
func Open(databaseURL string) (*Store, error) {
	var dialector gorm.Dialector
	if databaseURL != "" {
		dialector = postgres.Open(databaseURL)
	} else {
		dialector = sqlite.Open("bridge.db")
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Save persists one record. Failures are logged and swallowed; the audit
// trail never fails a request.
func (s *Store) Save(rec *Record) {
	if s == nil {
		return
	}
	if err := s.db.Create(rec).Error; err != nil {
		logging.S().Warnw("failed to save history record", "task", rec.Task, "error", err)
	}
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var records []Record
	err := s.db.Order("created_at desc").Limit(limit).Find(&records).Error
	return records, err
}
