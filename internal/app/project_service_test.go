package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/persistence"
	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/mocks"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

const projectBucket = "project-images-bucket"

// failingProjects fails every write while reads go to the real repository.
type failingProjects struct {
	ports.ProjectRepository
}

func (failingProjects) Create(context.Context, *domain.Project) error {
	return errors.New("database is read-only")
}

func (failingProjects) Update(context.Context, *domain.Project) error {
	return errors.New("database is read-only")
}

func newProjectService(t *testing.T, db *gorm.DB) (*ProjectService, *mocks.MockObjectStorage) {
	t.Helper()

	storage := mocks.NewMockObjectStorage(t)
	svc := NewProjectService(ProjectServiceConfig{
		Projects: persistence.NewProjectRepository(db),
		Storage:  storage,
		Bucket:   projectBucket,
	})
	return svc, storage
}

func strPtr(s string) *string { return &s }

func TestNewProjectService_Panics(t *testing.T) {
	assert.Panics(t, func() { NewProjectService(ProjectServiceConfig{}) })
	assert.Panics(t, func() {
		NewProjectService(ProjectServiceConfig{
			Projects: persistence.NewProjectRepository(nil),
			Storage:  mocks.NewMockObjectStorage(t),
		})
	})
}

func TestProjectService_Create(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@example.com")
	svc, storage := newProjectService(t, db)
	ctx := context.Background()

	t.Run("defaults to active without image", func(t *testing.T) {
		project, err := svc.Create(ctx, owner, ProjectInput{Name: " Kupaonica ", Address: "Ilica 1"})
		require.NoError(t, err)

		assert.NotZero(t, project.ID)
		assert.Equal(t, "Kupaonica", project.Name)
		assert.Equal(t, domain.ProjectStatusActive, project.Status)
		assert.Equal(t, owner.UserID, project.OwnerID)
		assert.Empty(t, project.ImageURL)
	})

	t.Run("uploads image", func(t *testing.T) {
		storage.EXPECT().
			Upload(mock.Anything, projectBucket, mock.MatchedBy(func(path string) bool {
				return strings.HasPrefix(path, "projects/") && strings.HasSuffix(path, ".png")
			}), pngHeader, "image/png").
			Return("https://storage.example.com/public/project.png", nil).
			Once()

		project, err := svc.Create(ctx, owner, ProjectInput{Name: "Kuhinja", Status: "na čekanju", Image: pngBase64()})
		require.NoError(t, err)

		assert.Equal(t, domain.ProjectStatusPending, project.Status)
		assert.Equal(t, "https://storage.example.com/public/project.png", project.ImageURL)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Create(ctx, owner, ProjectInput{Name: "  "})
		assert.True(t, domain.IsValidation(err))

		_, err = svc.Create(ctx, owner, ProjectInput{Name: "X", Status: "archived"})
		assert.True(t, domain.IsValidation(err))

		_, err = svc.Create(ctx, owner, ProjectInput{Name: "X", Image: "!!!"})
		assert.True(t, domain.IsValidation(err))

		_, err = svc.Create(ctx, domain.Actor{}, ProjectInput{Name: "X"})
		assert.True(t, domain.IsUnauthorized(err))
	})
}

func TestProjectService_Create_DeletesImageWhenInsertFails(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@example.com")
	storage := mocks.NewMockObjectStorage(t)
	svc := NewProjectService(ProjectServiceConfig{
		Projects: failingProjects{persistence.NewProjectRepository(db)},
		Storage:  storage,
		Bucket:   projectBucket,
	})

	var uploaded string
	storage.EXPECT().Upload(mock.Anything, projectBucket, mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, _, path string, _ []byte, _ string) (string, error) {
			uploaded = path
			return "https://storage.example.com/" + path, nil
		})
	storage.EXPECT().Delete(mock.Anything, projectBucket, mock.Anything).
		Run(func(_ context.Context, _, path string) { assert.Equal(t, uploaded, path) }).
		Return(nil).
		Once()

	_, err := svc.Create(context.Background(), owner, ProjectInput{Name: "Kuhinja", Image: pngBase64()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
}

func TestProjectService_Update(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@example.com")
	svc, storage := newProjectService(t, db)
	ctx := context.Background()

	project := seedProject(t, db, owner, "Kupaonica")

	updated, err := svc.Update(ctx, owner, project.ID, ProjectUpdate{
		Status: strPtr("ZAVRSEN"),
		Notes:  strPtr("gotovo"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Kupaonica", updated.Name, "nil fields are left as is")
	assert.Equal(t, domain.ProjectStatusCompleted, updated.Status)
	assert.Equal(t, "gotovo", updated.Notes)

	storage.EXPECT().Upload(mock.Anything, projectBucket, mock.Anything, mock.Anything, mock.Anything).
		Return("https://storage.example.com/new.png", nil).Once()

	updated, err = svc.Update(ctx, owner, project.ID, ProjectUpdate{Image: pngBase64()})
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/new.png", updated.ImageURL)

	updated, err = svc.Update(ctx, owner, project.ID, ProjectUpdate{RemoveImage: true})
	require.NoError(t, err)
	assert.Empty(t, updated.ImageURL)

	reloaded, err := svc.Get(ctx, owner, project.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.ImageURL)
	assert.Equal(t, "gotovo", reloaded.Notes)

	_, err = svc.Update(ctx, owner, project.ID, ProjectUpdate{Name: strPtr(" ")})
	assert.True(t, domain.IsValidation(err))
}

func TestProjectService_Update_DeletesImageWhenSaveFails(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@example.com")
	project := seedProject(t, db, owner, "Kupaonica")

	storage := mocks.NewMockObjectStorage(t)
	svc := NewProjectService(ProjectServiceConfig{
		Projects: failingProjects{persistence.NewProjectRepository(db)},
		Storage:  storage,
		Bucket:   projectBucket,
	})

	storage.EXPECT().Upload(mock.Anything, projectBucket, mock.Anything, mock.Anything, mock.Anything).
		Return("https://storage.example.com/new.png", nil)
	storage.EXPECT().Delete(mock.Anything, projectBucket, mock.Anything).Return(nil).Once()

	_, err := svc.Update(context.Background(), owner, project.ID, ProjectUpdate{Image: pngBase64()})
	require.Error(t, err)
}

func TestProjectService_Ownership(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@example.com")
	intruder := seedUser(t, db, "intruder@example.com")
	svc, _ := newProjectService(t, db)
	ctx := context.Background()

	project := seedProject(t, db, owner, "Kupaonica")

	_, err := svc.Get(ctx, intruder, project.ID)
	assert.True(t, domain.IsForbidden(err))

	_, err = svc.Update(ctx, intruder, project.ID, ProjectUpdate{Name: strPtr("Moje")})
	assert.True(t, domain.IsForbidden(err))

	err = svc.Delete(ctx, intruder, project.ID)
	assert.True(t, domain.IsForbidden(err))

	_, err = svc.Get(ctx, owner, 999)
	assert.True(t, domain.IsNotFound(err))

	list, err := svc.List(ctx, intruder)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProjectService_List(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@example.com")
	svc, _ := newProjectService(t, db)

	seedProject(t, db, owner, "Terasa")
	seedProject(t, db, owner, "Kupaonica")

	list, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Kupaonica", list[0].Name)
	assert.Equal(t, "Terasa", list[1].Name)
}

func TestProjectService_Delete_DetachesQuotes(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@example.com")
	svc, _ := newProjectService(t, db)
	ctx := context.Background()

	project := seedProject(t, db, owner, "Kupaonica")
	article := seedArticle(t, db, "Beton", "10.00", domain.MeasureUnitCubicMeter)

	quotes := persistence.NewQuoteRepository(db)
	quote := &domain.Quote{
		OwnerID:   owner.UserID,
		ProjectID: &project.ID,
		Items:     []domain.QuoteItem{{ArticleID: article.ID, Quantity: 1}},
	}
	require.NoError(t, quotes.Create(ctx, quote))

	require.NoError(t, svc.Delete(ctx, owner, project.ID))

	_, err := svc.Get(ctx, owner, project.ID)
	assert.True(t, domain.IsNotFound(err))

	reloaded, err := quotes.GetByID(ctx, quote.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.ProjectID)
}
