package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/winsznx/cookathon/internal/store/schema"
	"github.com/winsznx/cookathon/internal/testutil"
)

func migratedDB(t *testing.T, prepare func(db *gorm.DB)) *gorm.DB {
	t.Helper()
	testutil.InitLogger(t)
	db := testutil.OpenEmptyDB(t)
	if prepare != nil {
		prepare(db)
	}
	require.NoError(t, NewMigrator(db).Migrate(context.Background(), TargetSchemaVersion))
	return db
}

func TestMigrateFreshStore(t *testing.T) {
	db := migratedDB(t, nil)

	for _, table := range []string{"users", "minted_assets", "sessions", "schema_versions"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	version, err := NewMigrator(db).CurrentVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TargetSchemaVersion, version)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := migratedDB(t, nil)

	// Populate a current-shape store, then migrate again.
	clock := testutil.NewFakeClock(testStart)
	s := NewSQLiteStore(db, clock)
	ctx := context.Background()
	user, err := s.UpsertUserByTelegramID(ctx, 111, "alice")
	require.NoError(t, err)
	_, err = s.RecordMint(ctx, RecordMintInput{
		OwnerUserID: user.ID, TokenID: 7, WalletAddress: "0xabc", TransactionRef: "0xtx",
	})
	require.NoError(t, err)

	require.NoError(t, NewMigrator(db).Migrate(ctx, TargetSchemaVersion))

	// Rows survive and the version marker stays a single row.
	var count int64
	require.NoError(t, db.Model(&schema.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&schema.MintedAsset{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&schema.SchemaVersion{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.False(t, db.Migrator().HasTable("users_backup"))
}

func TestMigrateLegacySingleNamespaceStore(t *testing.T) {
	// The oldest shape keyed users by the chat-platform ID directly, with no
	// surrogate key. That shape cannot be altered in place.
	db := migratedDB(t, func(db *gorm.DB) {
		require.NoError(t, db.Exec(`CREATE TABLE users (
			telegram_id INTEGER PRIMARY KEY,
			display_name TEXT,
			wallet_address TEXT,
			minted_count INTEGER DEFAULT 0
		)`).Error)
		require.NoError(t, db.Exec(
			`INSERT INTO users (telegram_id, display_name, minted_count) VALUES (111, 'alice', 2)`,
		).Error)
		require.NoError(t, db.Exec(`CREATE TABLE minted_assets (
			token_id INTEGER,
			telegram_id INTEGER
		)`).Error)
		require.NoError(t, db.Exec(
			`INSERT INTO minted_assets (token_id, telegram_id) VALUES (7, 111)`,
		).Error)
	})

	// Old rows survive in the backup tables.
	assert.True(t, db.Migrator().HasTable("users_backup"))
	assert.True(t, db.Migrator().HasTable("minted_assets_backup"))

	var backed int64
	require.NoError(t, db.Table("users_backup").Count(&backed).Error)
	assert.Equal(t, int64(1), backed)
	require.NoError(t, db.Table("minted_assets_backup").Count(&backed).Error)
	assert.Equal(t, int64(1), backed)

	// The live tables are rebuilt empty in the current shape.
	var live int64
	require.NoError(t, db.Model(&schema.User{}).Count(&live).Error)
	assert.Zero(t, live)
	assert.True(t, db.Migrator().HasColumn(&schema.User{}, "farcaster_fid"))
}

func TestMigrateAddsColumnsInPlace(t *testing.T) {
	// A store with the surrogate key but predating the social namespace:
	// columns are added, rows stay where they are.
	db := migratedDB(t, func(db *gorm.DB) {
		require.NoError(t, db.Exec(`CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			telegram_id INTEGER UNIQUE,
			display_name TEXT,
			wallet_address TEXT,
			minted_count INTEGER DEFAULT 0,
			last_mint_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`).Error)
		require.NoError(t, db.Exec(
			`INSERT INTO users (telegram_id, display_name, minted_count) VALUES (111, 'alice', 5)`,
		).Error)
	})

	assert.False(t, db.Migrator().HasTable("users_backup"))
	assert.True(t, db.Migrator().HasColumn(&schema.User{}, "farcaster_fid"))
	assert.True(t, db.Migrator().HasColumn(&schema.User{}, "platform"))

	// The existing rows keep their values through the column adds.
	var user schema.User
	require.NoError(t, db.Where("telegram_id = ?", 111).First(&user).Error)
	require.NotNil(t, user.TelegramID)
	assert.Equal(t, int64(111), *user.TelegramID)
	assert.Equal(t, "alice", user.DisplayName)
	assert.Equal(t, 5, user.MintedCount)
	assert.Nil(t, user.FarcasterFID)
}

func TestMigrateLegacyDetectionIgnoresColumnNameSuffix(t *testing.T) {
	// A table whose DDL mentions telegram_id must still read as "no id
	// column": the shape probe has to look at real column names, not at
	// substrings of the CREATE statement.
	db := migratedDB(t, func(db *gorm.DB) {
		require.NoError(t, db.Exec(`CREATE TABLE users (
			telegram_id INTEGER PRIMARY KEY,
			display_name TEXT
		)`).Error)
		require.NoError(t, db.Exec(
			`INSERT INTO users (telegram_id, display_name) VALUES (42, 'bob')`,
		).Error)
	})

	assert.True(t, db.Migrator().HasTable("users_backup"))

	var backed int64
	require.NoError(t, db.Table("users_backup").Count(&backed).Error)
	assert.Equal(t, int64(1), backed)

	// And the rebuilt live table carries the current shape.
	assert.True(t, db.Migrator().HasColumn(&schema.User{}, "farcaster_fid"))
	var live int64
	require.NoError(t, db.Model(&schema.User{}).Count(&live).Error)
	assert.Zero(t, live)
}

func TestMigratedUniqueIndexPermitsMultipleNulls(t *testing.T) {
	db := migratedDB(t, func(db *gorm.DB) {
		require.NoError(t, db.Exec(`CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			telegram_id INTEGER UNIQUE,
			display_name TEXT,
			wallet_address TEXT,
			minted_count INTEGER DEFAULT 0,
			last_mint_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`).Error)
	})

	clock := testutil.NewFakeClock(testStart)
	s := NewSQLiteStore(db, clock)
	ctx := context.Background()

	// Many telegram-only users with NULL farcaster_fid must coexist.
	_, err := s.UpsertUserByTelegramID(ctx, 1, "a")
	require.NoError(t, err)
	_, err = s.UpsertUserByTelegramID(ctx, 2, "b")
	require.NoError(t, err)

	// While duplicate non-null FIDs are still rejected.
	_, err = s.UpsertUserByFarcasterFID(ctx, 42, "c")
	require.NoError(t, err)
	err = db.Exec(
		`INSERT INTO users (farcaster_fid, display_name) VALUES (42, 'dupe')`,
	).Error
	assert.Error(t, err)
}

func TestCurrentVersionFreshStore(t *testing.T) {
	testutil.InitLogger(t)
	db := testutil.OpenEmptyDB(t)

	version, err := NewMigrator(db).CurrentVersion(context.Background())
	require.NoError(t, err)
	assert.Zero(t, version)
}
