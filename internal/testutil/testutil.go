// Package testutil provides shared helpers for package tests: an isolated
// on-disk SQLite database per test and a manually advanced clock.
package testutil

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/winsznx/cookathon/internal/logger"
	"github.com/winsznx/cookathon/internal/store/schema"
)

var loggerOnce sync.Once

// InitLogger initializes the global logger once for the test binary.
func InitLogger(t *testing.T) {
	t.Helper()
	loggerOnce.Do(func() {
		if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
			t.Fatalf("initialize logger: %v", err)
		}
	})
}

// OpenEmptyDB opens a fresh SQLite database in the test's temp directory
// with no tables created. Used by migration tests that build legacy shapes
// by hand.
func OpenEmptyDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

// NewTestDB opens a fresh SQLite database with the current schema applied.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := OpenEmptyDB(t)
	require.NoError(t, db.AutoMigrate(
		&schema.User{},
		&schema.MintedAsset{},
		&schema.Session{},
		&schema.SchemaVersion{},
	))
	return db
}

// FakeClock is a Clock whose time only moves when the test advances it.
// After returns a channel the test feeds through Tick, so timer-driven loops
// fire exactly when the test says so.
type FakeClock struct {
	mu    sync.Mutex
	now   time.Time
	after chan time.Time
}

// NewFakeClock creates a FakeClock starting at the given instant.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{
		now:   start,
		after: make(chan time.Time, 1),
	}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	return c.after
}

// Advance moves the clock forward.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Tick fires the channel returned by After.
func (c *FakeClock) Tick() {
	c.after <- c.Now()
}
