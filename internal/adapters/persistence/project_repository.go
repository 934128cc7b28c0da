package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

// ProjectRepository implements ports.ProjectRepository.
type ProjectRepository struct {
	db *gorm.DB
}

var _ ports.ProjectRepository = (*ProjectRepository)(nil)

// NewProjectRepository creates a ProjectRepository.
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts the project and sets its ID and timestamps.
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	rec := newProjectRecord(project)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("creating project: %w", err)
	}

	project.ID = rec.ID
	project.CreatedAt = rec.CreatedAt
	project.UpdatedAt = rec.UpdatedAt
	return nil
}

// Update saves every mutable project field.
func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	rec := newProjectRecord(project)
	result := r.db.WithContext(ctx).Model(rec).Select("*").Omit("id", "owner_id", "created_at").Updates(rec)
	if result.Error != nil {
		return fmt.Errorf("updating project %d: %w", project.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("project", idString(project.ID))
	}

	project.UpdatedAt = rec.UpdatedAt
	return nil
}

// GetByID loads a project.
func (r *ProjectRepository) GetByID(ctx context.Context, id uint) (*domain.Project, error) {
	var rec projectRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translateError(err, "project", idString(id))
	}
	return rec.toDomain(), nil
}

// ListByOwner returns the owner's projects ordered by name.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID uint) ([]*domain.Project, error) {
	var recs []projectRecord
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name ASC").Order("id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	projects := make([]*domain.Project, len(recs))
	for i := range recs {
		projects[i] = recs[i].toDomain()
	}
	return projects, nil
}

// Delete removes the project after detaching its quotes and calendar events.
func (r *ProjectRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&quoteRecord{}).Where("project_id = ?", id).
			Update("project_id", nil).Error; err != nil {
			return fmt.Errorf("detaching quotes from project %d: %w", id, err)
		}
		if err := tx.Model(&calendarEventRecord{}).Where("project_id = ?", id).
			Update("project_id", nil).Error; err != nil {
			return fmt.Errorf("detaching events from project %d: %w", id, err)
		}

		result := tx.Delete(&projectRecord{}, id)
		if result.Error != nil {
			return fmt.Errorf("deleting project %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound("project", idString(id))
		}
		return nil
	})
}
