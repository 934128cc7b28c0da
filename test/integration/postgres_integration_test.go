//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/persistence"
	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/platform/config"
)

// TestPostgres_MigrationsMatchRepositories applies the SQL migrations to a
// scratch database and drives the repositories against the result. Point
// OFFERMASTER_TEST_POSTGRES_DSN at a disposable database to run it.
func TestPostgres_MigrationsMatchRepositories(t *testing.T) {
	dsn := os.Getenv("OFFERMASTER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("OFFERMASTER_TEST_POSTGRES_DSN not set")
	}

	migrator, err := persistence.NewMigrator(dsn)
	require.NoError(t, err)
	defer func() { _ = migrator.Close() }()

	require.NoError(t, migrator.Up())
	t.Cleanup(func() { _ = migrator.Down(1) })

	version, dirty, err := migrator.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	db, err := persistence.Open(&config.DatabaseConfig{
		Driver:       persistence.DriverPostgres,
		DSN:          dsn,
		MaxOpenConns: 2,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer func() { _ = persistence.Close(db) }()

	ctx := context.Background()

	users := persistence.NewUserRepository(db)
	user := &domain.User{
		Email:             "ana@example.com",
		PasswordHash:      "$2a$04$placeholder",
		FirstName:         "Ana",
		LastName:          "Horvat",
		PrimaryAreaOfWork: domain.WorkAreaTiling,
	}
	require.NoError(t, users.Create(ctx, user))
	assert.NotZero(t, user.ID)

	dup := *user
	dup.ID = 0
	assert.True(t, domain.IsConflict(users.Create(ctx, &dup)))

	articles := persistence.NewArticleRepository(db)
	article := &domain.Article{
		Name:        "Fuga",
		Category:    domain.WorkAreaTiling,
		Price:       decimal.RequireFromString("4.50"),
		MeasureUnit: domain.MeasureUnitPiece,
	}
	require.NoError(t, articles.Create(ctx, article))

	// The unique index ignores case.
	shouting := &domain.Article{Name: "FUGA", Category: domain.WorkAreaTiling, Price: decimal.NewFromInt(1), MeasureUnit: domain.MeasureUnitPiece}
	assert.True(t, domain.IsConflict(articles.Create(ctx, shouting)))

	loaded, err := articles.GetByID(ctx, article.ID)
	require.NoError(t, err)
	assert.True(t, article.Price.Equal(loaded.Price))

	require.NoError(t, persistence.NewHealthChecker(db, persistence.DriverPostgres).Check(ctx))
}
