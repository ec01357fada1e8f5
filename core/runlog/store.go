// Package runlog persists one record per solved instance so that batch
// experiments can be aggregated and plotted afterwards.
package runlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunRecord captures the outcome of planning one instance.
type RunRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	// Source names the instance file or generator run.
	Source       string  `json:"source"`
	Index        int     `json:"index"`
	Period       int64   `json:"period"`
	Jobs         int     `json:"jobs"`
	Calibrations int     `json:"calibrations"`
	Rounds       int     `json:"rounds"`
	Seconds      float64 `json:"seconds"`
	Feasible     bool    `json:"feasible"`
	Error        string  `json:"error,omitempty"`
}

// NewRecord returns a record with a fresh id and the current time.
func NewRecord(source string, index int) RunRecord {
	return RunRecord{ID: uuid.NewString(), Timestamp: time.Now().UTC(), Source: source, Index: index}
}

// LogQuery defines filters for retrieving records. Zero values match all.
type LogQuery struct {
	Start    time.Time
	End      time.Time
	Source   string
	Period   int64
	Jobs     int
	Feasible *bool
}

// Match reports whether r satisfies q.
func (q LogQuery) Match(r RunRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Source != "" && r.Source != q.Source {
		return false
	}
	if q.Period != 0 && r.Period != q.Period {
		return false
	}
	if q.Jobs != 0 && r.Jobs != q.Jobs {
		return false
	}
	if q.Feasible != nil && r.Feasible != *q.Feasible {
		return false
	}
	return true
}

// LogStore persists RunRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q LogQuery) ([]RunRecord, error)
	Close() error
}

// Config selects and configures a LogStore.
type Config struct {
	// Backend is one of "jsonl", "rotating", "sqlite", "text" or "none".
	Backend string `json:"backend"`
	Path    string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "none"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "runs.db"
		case "text":
			c.Path = "runs.log"
		default:
			c.Path = "runs.jsonl"
		}
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Backend {
	case "none", "jsonl", "rotating", "sqlite", "text":
	default:
		return fmt.Errorf("unknown runlog backend %s", c.Backend)
	}
	if c.Backend != "none" && c.Path == "" {
		return fmt.Errorf("runlog path is required")
	}
	return nil
}

// NewStore opens the store described by cfg.
func NewStore(cfg Config) (LogStore, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "jsonl":
		return NewJSONLStore(cfg.Path)
	case "rotating":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "text":
		return NewTextStore(cfg.Path)
	default:
		return NopStore{}, nil
	}
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, RunRecord) error                { return nil }
func (NopStore) Query(context.Context, LogQuery) ([]RunRecord, error) { return nil, nil }
func (NopStore) Close() error                                         { return nil }
