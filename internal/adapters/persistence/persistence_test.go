package persistence

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/platform/config"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Open(&config.DatabaseConfig{
		Driver:       DriverSQLite,
		DSN:          "file:" + name + "?mode=memory&cache=shared&_foreign_keys=on",
		AutoMigrate:  true,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()

	user := &domain.User{Email: email, PasswordHash: "hash", FirstName: "Ana", PrimaryAreaOfWork: domain.WorkAreaElectrical}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func seedArticle(t *testing.T, db *gorm.DB, name, price string) *domain.Article {
	t.Helper()

	article := &domain.Article{
		Name:        name,
		Category:    domain.WorkAreaTiling,
		Price:       decimal.RequireFromString(price),
		MeasureUnit: domain.MeasureUnitSquareMeter,
	}
	require.NoError(t, NewArticleRepository(db).Create(context.Background(), article))
	return article
}

func TestNormalizeDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "  ", want: ""},
		{name: "url untouched", in: "postgres://u:p@h:5432/db", want: "postgres://u:p@h:5432/db"},
		{name: "quotes trimmed", in: `"postgresql://u@h/db"`, want: "postgresql://u@h/db"},
		{name: "key value gets sslmode", in: "host=db  user=u dbname=offers", want: "host=db user=u dbname=offers sslmode=disable"},
		{name: "key value keeps sslmode", in: "host=db user=u dbname=o sslmode=require", want: "host=db user=u dbname=o sslmode=require"},
		{name: "unknown form untouched", in: "offers.db", want: "offers.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDSN(tt.in))
		})
	}
}

func TestMigrationURL(t *testing.T) {
	assert.Equal(t, "postgres://u:p@db:5432/offers?sslmode=disable",
		MigrationURL("host=db port=5432 user=u password=p dbname=offers sslmode=disable"))
	assert.Equal(t, "postgres://u@db/offers", MigrationURL("host=db user=u dbname=offers"))
	assert.Equal(t, "postgres://x@y/z", MigrationURL("postgres://x@y/z"))
	assert.Equal(t, "host=db", MigrationURL("host=db"))
}

func TestEmbeddedMigrations_ArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(migrationFiles, down)
		assert.NoError(t, err, "missing %s", down)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle", DSN: "x"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	user := seedUser(t, db, "Ana@Example.com")
	assert.NotZero(t, user.ID)
	assert.Equal(t, "ana@example.com", user.Email)

	t.Run("duplicate email ignores case", func(t *testing.T) {
		err := repo.Create(ctx, &domain.User{Email: "ANA@example.com", PasswordHash: "x"})
		require.Error(t, err)
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("lookup by email ignores case", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, " ana@EXAMPLE.com ")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, domain.WorkAreaElectrical, got.PrimaryAreaOfWork)
	})

	t.Run("update to a taken email conflicts", func(t *testing.T) {
		other := seedUser(t, db, "other@example.com")
		other.Email = "ana@example.com"
		err := repo.Update(ctx, other)
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("update saves fields", func(t *testing.T) {
		user.LastName = "Horvat"
		require.NoError(t, repo.Update(ctx, user))

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Horvat", got.LastName)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		assert.True(t, domain.IsNotFound(err))

		_, err = repo.GetByEmail(ctx, "nobody@example.com")
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestPasswordResetTokenRepository_Replace(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewPasswordResetTokenRepository(db)
	user := seedUser(t, db, "reset@example.com")

	first := &domain.PasswordResetToken{Token: "first", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Replace(ctx, first))
	second := &domain.PasswordResetToken{Token: "second", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Replace(ctx, second))

	_, err := repo.GetByToken(ctx, "first")
	assert.True(t, domain.IsNotFound(err))

	got, err := repo.GetByToken(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	require.NoError(t, repo.Delete(ctx, got.ID))
	_, err = repo.GetByToken(ctx, "second")
	assert.True(t, domain.IsNotFound(err))
}

func TestArticleRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewArticleRepository(db)

	tiles := seedArticle(t, db, "Keramičke pločice", "25.00")
	seedArticle(t, db, "Ljepilo za pločice", "8.50")
	seedArticle(t, db, "Cement", "6.20")

	t.Run("name conflict ignores case", func(t *testing.T) {
		err := repo.Create(ctx, &domain.Article{Name: "CEMENT", Price: decimal.NewFromInt(1)})
		require.Error(t, err)
		assert.True(t, domain.IsConflict(err))
		assert.Contains(t, err.Error(), domain.ArticleConflictMessage)
	})

	t.Run("renaming to own name succeeds", func(t *testing.T) {
		tiles.Name = "keramičke pločice"
		require.NoError(t, repo.Update(ctx, tiles))
	})

	t.Run("update of missing article", func(t *testing.T) {
		err := repo.Update(ctx, &domain.Article{ID: 4242, Name: "Ghost"})
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("price survives a round trip", func(t *testing.T) {
		got, err := repo.GetByID(ctx, tiles.ID)
		require.NoError(t, err)
		assert.Equal(t, "25.00", got.Price.StringFixed(2))
		assert.Equal(t, domain.MeasureUnitSquareMeter, got.MeasureUnit)
	})

	t.Run("find by name", func(t *testing.T) {
		got, err := repo.FindByName(ctx, " cement ")
		require.NoError(t, err)
		assert.Equal(t, "Cement", got.Name)
	})

	t.Run("search and paging", func(t *testing.T) {
		page, total, err := repo.List(ctx, ports.ArticleFilter{Search: "PLOČICE", Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, page, 1)
		assert.Equal(t, "keramičke pločice", page[0].Name)

		page, _, err = repo.List(ctx, ports.ArticleFilter{Search: "pločice", Offset: 1, Limit: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "Ljepilo za pločice", page[0].Name)
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		_, total, err := repo.List(ctx, ports.ArticleFilter{Search: "%", Limit: 10})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("get by ids skips missing", func(t *testing.T) {
		found, err := repo.GetByIDs(ctx, []uint{tiles.ID, 9999})
		require.NoError(t, err)
		assert.Len(t, found, 1)
		assert.Contains(t, found, tiles.ID)
	})
}

func TestProjectRepository_DeleteDetachesQuotesAndEvents(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@example.com")
	article := seedArticle(t, db, "Cijev", "3.00")

	projects := NewProjectRepository(db)
	quotes := NewQuoteRepository(db)
	events := NewCalendarEventRepository(db)

	project := &domain.Project{OwnerID: owner.ID, Name: "Kupaonica", Status: domain.ProjectStatusActive}
	require.NoError(t, projects.Create(ctx, project))

	quote := &domain.Quote{
		OwnerID:   owner.ID,
		ProjectID: &project.ID,
		Items:     []domain.QuoteItem{{ArticleID: article.ID, Quantity: 2}},
	}
	require.NoError(t, quotes.Create(ctx, quote))

	event := &domain.CalendarEvent{OwnerID: owner.ID, Title: "Obilazak", Date: time.Now(), ProjectID: &project.ID}
	require.NoError(t, events.Create(ctx, event))

	require.NoError(t, projects.Delete(ctx, project.ID))

	_, err := projects.GetByID(ctx, project.ID)
	assert.True(t, domain.IsNotFound(err))

	gotQuote, err := quotes.GetByID(ctx, quote.ID)
	require.NoError(t, err)
	assert.Nil(t, gotQuote.ProjectID)

	gotEvent, err := events.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Nil(t, gotEvent.ProjectID)

	assert.True(t, domain.IsNotFound(projects.Delete(ctx, project.ID)))
}

func TestProjectRepository_UpdateAndList(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	owner := seedUser(t, db, "p@example.com")
	other := seedUser(t, db, "q@example.com")
	repo := NewProjectRepository(db)

	for _, name := range []string{"Zagreb stan", "Adriatic vila"} {
		require.NoError(t, repo.Create(ctx, &domain.Project{OwnerID: owner.ID, Name: name}))
	}
	require.NoError(t, repo.Create(ctx, &domain.Project{OwnerID: other.ID, Name: "Tuđi"}))

	list, err := repo.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Adriatic vila", list[0].Name)

	list[0].Status = domain.ProjectStatusCompleted
	list[0].ImageURL = ""
	require.NoError(t, repo.Update(ctx, list[0]))

	got, err := repo.GetByID(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusCompleted, got.Status)
	assert.Equal(t, owner.ID, got.OwnerID)
}

func TestQuoteRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	owner := seedUser(t, db, "quotes@example.com")
	a := seedArticle(t, db, "Pločice", "25.00")
	b := seedArticle(t, db, "Ljepilo", "50.00")

	quotes := NewQuoteRepository(db)
	events := NewCalendarEventRepository(db)

	older := &domain.Quote{OwnerID: owner.ID, Items: []domain.QuoteItem{{ArticleID: a.ID, Quantity: 1}}}
	require.NoError(t, quotes.Create(ctx, older))

	quote := &domain.Quote{
		OwnerID:  owner.ID,
		Discount: 10,
		Items: []domain.QuoteItem{
			{ArticleID: b.ID, Quantity: 8},
			{ArticleID: a.ID, Quantity: 100},
		},
	}
	require.NoError(t, quotes.Create(ctx, quote))
	require.NotZero(t, quote.ID)
	assert.NotZero(t, quote.Items[0].ID)

	t.Run("items keep insertion order", func(t *testing.T) {
		got, err := quotes.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 2)
		assert.Equal(t, b.ID, got.Items[0].ArticleID)
		assert.Equal(t, 100, got.Items[1].Quantity)
		assert.Nil(t, got.Items[0].Article)
		assert.Equal(t, 10, got.Discount)
	})

	t.Run("list newest first", func(t *testing.T) {
		list, err := quotes.ListByOwner(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, quote.ID, list[0].ID)
		assert.Len(t, list[0].Items, 2)
	})

	t.Run("delete removes items and detaches events", func(t *testing.T) {
		event := &domain.CalendarEvent{OwnerID: owner.ID, Title: "Predaja", Date: time.Now(), QuoteID: &quote.ID}
		require.NoError(t, events.Create(ctx, event))

		require.NoError(t, quotes.Delete(ctx, quote.ID))

		_, err := quotes.GetByID(ctx, quote.ID)
		assert.True(t, domain.IsNotFound(err))

		var items int64
		require.NoError(t, db.Model(&quoteItemRecord{}).Where("quote_id = ?", quote.ID).Count(&items).Error)
		assert.Zero(t, items)

		got, err := events.GetByID(ctx, event.ID)
		require.NoError(t, err)
		assert.Nil(t, got.QuoteID)
	})
}

func TestCalendarEventRepository_ListOrderedByDate(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	owner := seedUser(t, db, "cal@example.com")
	repo := NewCalendarEventRepository(db)

	dates := []string{"2025-03-10", "2025-01-05", "2025-02-20"}
	for _, d := range dates {
		date, err := domain.ParseDate("date", d)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, &domain.CalendarEvent{OwnerID: owner.ID, Title: d, Date: date}))
	}

	list, err := repo.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2025-01-05", list[0].Date.Format(domain.DateLayout))
	assert.Equal(t, "2025-03-10", list[2].Date.Format(domain.DateLayout))

	require.NoError(t, repo.Delete(ctx, list[0].ID))
	assert.True(t, domain.IsNotFound(repo.Delete(ctx, list[0].ID)))
}

func TestHealthChecker(t *testing.T) {
	db := setupTestDB(t)
	checker := NewHealthChecker(db, DriverSQLite)

	assert.Equal(t, "sqlite", checker.Name())
	assert.NoError(t, checker.Check(context.Background()))
}
