package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/winsznx/cookathon/internal/logger"
	"github.com/winsznx/cookathon/internal/store/schema"
)

// TargetSchemaVersion is the schema shape this build writes and expects
const TargetSchemaVersion = 1

// Migrator brings an existing store file from any prior schema shape to the
// current one before anything else touches it. It inspects the structural
// shape of the tables rather than trusting the version marker alone, because
// a store may have been populated by a build that never wrote a marker.
//
// Breaking shapes are renamed to *_backup and recreated empty; rows already
// backed up are not re-inserted into the live tables. That is a deliberate
// manual-recovery boundary: migration guarantees no data loss in the store
// file, not automatic re-population.
type Migrator struct {
	db *gorm.DB
}

// NewMigrator creates a migrator over an open store handle
func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{db: db}
}

// CurrentVersion reads the version marker, returning 0 for a fresh or legacy
// store that has no marker row
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	db := m.db.WithContext(ctx)
	if !db.Migrator().HasTable(&schema.SchemaVersion{}) {
		return 0, nil
	}

	var marker schema.SchemaVersion
	if err := db.First(&marker).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return marker.Version, nil
}

// Migrate brings the store to the target shape. Structural steps that fail
// are logged and skipped so startup still ends with a usable current-shape
// store; only the final declarative creation is fatal.
func (m *Migrator) Migrate(ctx context.Context, target int) error {
	version, err := m.CurrentVersion(ctx)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to read schema version, assuming legacy store", zap.Error(err))
		version = 0
	}
	logger.InfoCtx(ctx, "Running store migrations",
		zap.Int("current_version", version),
		zap.Int("target_version", target),
	)

	if version < 1 && target >= 1 {
		m.migrateToV1(ctx)
	}

	// Declarative creation of whatever tables are still missing. Tables that
	// already exist are left alone: letting AutoMigrate reconcile a live
	// table's DDL against the model can rebuild columns and drop their
	// values on this engine, so the structural steps above are the only
	// thing that ever touches existing data.
	db := m.db.WithContext(ctx)
	for _, model := range []interface{}{
		&schema.User{},
		&schema.MintedAsset{},
		&schema.Session{},
		&schema.SchemaVersion{},
	} {
		if db.Migrator().HasTable(model) {
			continue
		}
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to create current schema: %w", err)
		}
	}

	if err := m.stampVersion(ctx, target); err != nil {
		return err
	}

	logger.InfoCtx(ctx, "Store migrations complete", zap.Int("version", target))
	return nil
}

// migrateToV1 adds dual-namespace identity support: the surrogate user key,
// the farcaster_fid column with its null-permitting unique index, and the
// platform tags on users and minted_assets
func (m *Migrator) migrateToV1(ctx context.Context) {
	db := m.db.WithContext(ctx)
	mg := db.Migrator()

	if !mg.HasTable("users") {
		logger.InfoCtx(ctx, "No existing users table, fresh store")
		return
	}

	userCols, err := m.tableColumns(ctx, "users")
	if err != nil {
		m.degraded(ctx, "inspect users", err)
		return
	}

	if !userCols["id"] {
		// Single-namespace legacy shape: the chat-platform ID was the primary
		// key. Back up both tables and let the declarative step rebuild them.
		logger.InfoCtx(ctx, "Legacy single-namespace schema detected, backing up tables")
		m.backupTable(ctx, "users")
		if mg.HasTable("minted_assets") {
			m.backupTable(ctx, "minted_assets")
		}
		return
	}

	if !userCols["farcaster_fid"] {
		logger.InfoCtx(ctx, "Adding farcaster_fid column to users")
		if err := db.Exec(`ALTER TABLE users ADD COLUMN farcaster_fid INTEGER`).Error; err != nil {
			m.degraded(ctx, "add users.farcaster_fid", err)
		} else if err := db.Exec(
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_farcaster_unique ON users(farcaster_fid) WHERE farcaster_fid IS NOT NULL`,
		).Error; err != nil {
			m.degraded(ctx, "index users.farcaster_fid", err)
		}
	}

	if !userCols["platform"] {
		logger.InfoCtx(ctx, "Adding platform column to users")
		if err := db.Exec(`ALTER TABLE users ADD COLUMN platform TEXT NOT NULL DEFAULT 'telegram'`).Error; err != nil {
			m.degraded(ctx, "add users.platform", err)
		}
	}

	if !mg.HasTable("minted_assets") {
		return
	}

	assetCols, err := m.tableColumns(ctx, "minted_assets")
	if err != nil {
		m.degraded(ctx, "inspect minted_assets", err)
		return
	}

	if !assetCols["owner_user_id"] {
		// Assets still keyed by the platform ID; backup and rebuild
		logger.InfoCtx(ctx, "Legacy minted_assets shape detected, backing up table")
		m.backupTable(ctx, "minted_assets")
	} else if !assetCols["platform"] {
		logger.InfoCtx(ctx, "Adding platform column to minted_assets")
		if err := db.Exec(`ALTER TABLE minted_assets ADD COLUMN platform TEXT NOT NULL DEFAULT 'telegram'`).Error; err != nil {
			m.degraded(ctx, "add minted_assets.platform", err)
		}
	}
}

// tableColumns reads the live column set via PRAGMA table_info. gorm's
// HasColumn on this engine matches the DDL by substring, so probing for "id"
// false-positives on tables whose only key is telegram_id.
func (m *Migrator) tableColumns(ctx context.Context, table string) (map[string]bool, error) {
	var names []string
	err := m.db.WithContext(ctx).
		Raw(`SELECT name FROM pragma_table_info(?)`, table).
		Scan(&names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}

	cols := make(map[string]bool, len(names))
	for _, name := range names {
		cols[name] = true
	}
	return cols, nil
}

// backupTable renames a live table under the _backup suffix. Rename preserves
// every row; the live table is rebuilt empty by the declarative step.
func (m *Migrator) backupTable(ctx context.Context, name string) {
	if err := m.db.WithContext(ctx).Migrator().RenameTable(name, name+"_backup"); err != nil {
		m.degraded(ctx, "backup "+name, err)
	}
}

// degraded logs a failed structural step. The migrator keeps going: ending up
// with a usable current-shape store beats refusing to start.
func (m *Migrator) degraded(ctx context.Context, step string, err error) {
	logger.WarnCtx(ctx, "Migration step failed, continuing to table creation",
		zap.String("step", step),
		zap.Error(err),
	)
}

// stampVersion rewrites the single-row version marker
func (m *Migrator) stampVersion(ctx context.Context, version int) error {
	db := m.db.WithContext(ctx)
	if err := db.Where("1 = 1").Delete(&schema.SchemaVersion{}).Error; err != nil {
		return fmt.Errorf("failed to clear schema version: %w", err)
	}
	if err := db.Create(&schema.SchemaVersion{Version: version}).Error; err != nil {
		return fmt.Errorf("failed to stamp schema version: %w", err)
	}
	return nil
}
