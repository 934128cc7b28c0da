package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	appctx "github.com/jsamuelsen/offermaster-service/internal/app/context"
	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

const projectImagePrefix = "projects"

// ProjectInput carries a new project. Image is an optional base64 payload.
type ProjectInput struct {
	Name    string
	Address string
	Status  string
	Notes   string
	Image   string
}

// ProjectUpdate carries a partial project update. Nil fields are left as is.
// A non-empty Image replaces the current one; RemoveImage clears it.
type ProjectUpdate struct {
	Name        *string
	Address     *string
	Status      *string
	Notes       *string
	Image       string
	RemoveImage bool
}

// ProjectService manages the actor's projects.
type ProjectService struct {
	projects ports.ProjectRepository
	storage  ports.ObjectStorage
	bucket   string
	now      func() time.Time
}

// ProjectServiceConfig contains the dependencies of the project service.
type ProjectServiceConfig struct {
	Projects ports.ProjectRepository
	Storage  ports.ObjectStorage

	// Bucket receives project images.
	Bucket string
}

// NewProjectService creates a project service. Panics if a dependency is missing.
func NewProjectService(cfg ProjectServiceConfig) *ProjectService {
	if cfg.Projects == nil || cfg.Storage == nil {
		panic("ProjectService: project repository and object storage are required")
	}
	if cfg.Bucket == "" {
		panic("ProjectService: bucket is required")
	}

	return &ProjectService{
		projects: cfg.Projects,
		storage:  cfg.Storage,
		bucket:   cfg.Bucket,
		now:      time.Now,
	}
}

// Create stores a project owned by the actor. The image, when present, is
// uploaded first and deleted again if the insert fails.
func (s *ProjectService) Create(ctx context.Context, actor domain.Actor, in ProjectInput) (_ *domain.Project, err error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	project := &domain.Project{
		OwnerID: actor.UserID,
		Name:    strings.TrimSpace(in.Name),
		Address: strings.TrimSpace(in.Address),
		Notes:   in.Notes,
		Status:  domain.ProjectStatusActive,
	}
	if project.Name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	if in.Status != "" {
		if project.Status, err = domain.ParseProjectStatus("status", in.Status); err != nil {
			return nil, err
		}
	}

	var img *image
	if in.Image != "" {
		if img, err = decodeImage("image", in.Image); err != nil {
			return nil, err
		}
	}

	rc := appctx.New(ctx)
	defer compensate(ctx, rc, &err)

	if img != nil {
		if project.ImageURL, err = upload(ctx, rc, s.storage, s.bucket, projectImagePrefix, img, s.now()); err != nil {
			return nil, err
		}
	}

	if err = s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	loggerFor(ctx, "app.ProjectService").InfoContext(ctx, "project created",
		slog.Uint64("project_id", uint64(project.ID)),
		slog.Bool("has_image", project.ImageURL != ""))

	return project, nil
}

// List returns the actor's projects ordered by name.
func (s *ProjectService) List(ctx context.Context, actor domain.Actor) ([]*domain.Project, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	projects, err := s.projects.ListByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// Get returns a project owned by the actor.
func (s *ProjectService) Get(ctx context.Context, actor domain.Actor, id uint) (*domain.Project, error) {
	return s.owned(ctx, actor, "read project", id)
}

// Update applies a partial update to a project owned by the actor.
func (s *ProjectService) Update(ctx context.Context, actor domain.Actor, id uint, in ProjectUpdate) (_ *domain.Project, err error) {
	project, err := s.owned(ctx, actor, "update project", id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "must not be empty")
		}
		project.Name = name
	}
	if in.Address != nil {
		project.Address = strings.TrimSpace(*in.Address)
	}
	if in.Notes != nil {
		project.Notes = *in.Notes
	}
	if in.Status != nil {
		if project.Status, err = domain.ParseProjectStatus("status", *in.Status); err != nil {
			return nil, err
		}
	}

	var img *image
	if in.Image != "" {
		if img, err = decodeImage("image", in.Image); err != nil {
			return nil, err
		}
	}

	rc := appctx.New(ctx)
	defer compensate(ctx, rc, &err)

	switch {
	case img != nil:
		if project.ImageURL, err = upload(ctx, rc, s.storage, s.bucket, projectImagePrefix, img, s.now()); err != nil {
			return nil, err
		}
	case in.RemoveImage:
		project.ImageURL = ""
	}

	if err = s.projects.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	return project, nil
}

// Delete removes a project owned by the actor. Its quotes and calendar events
// are kept and detached.
func (s *ProjectService) Delete(ctx context.Context, actor domain.Actor, id uint) error {
	if _, err := s.owned(ctx, actor, "delete project", id); err != nil {
		return err
	}

	if err := s.projects.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	loggerFor(ctx, "app.ProjectService").InfoContext(ctx, "project deleted", slog.Uint64("project_id", uint64(id)))
	return nil
}

func (s *ProjectService) owned(ctx context.Context, actor domain.Actor, operation string, id uint) (*domain.Project, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading project %d: %w", id, err)
	}
	if err := actor.Authorize(operation, "project", project.OwnerID); err != nil {
		return nil, err
	}
	return project, nil
}

// compensate rolls back the request context when *errp is set and marks it
// complete otherwise. Rollback failures are logged; the caller still sees the
// original error.
func compensate(ctx context.Context, rc *appctx.RequestContext, errp *error) {
	if *errp == nil {
		rc.Complete()
		return
	}

	if rbErr := rc.Rollback(ctx); rbErr != nil {
		loggerFor(ctx, "app").ErrorContext(ctx, "compensation failed",
			slog.Any("error", rbErr),
			slog.String("cause", (*errp).Error()))
	}
}
