package context

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/offermaster-service/internal/platform/logging"
)

// Action is a side effect that can be compensated.
type Action interface {
	// Execute performs the action.
	Execute(ctx context.Context) error

	// Rollback undoes a successful Execute.
	Rollback(ctx context.Context) error

	// Description returns a human-readable description for logging.
	Description() string
}

// Do executes action now and records it for Rollback.
// A failed action is not recorded.
func (rc *RequestContext) Do(ctx context.Context, action Action) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.completed {
		return ErrCompleted
	}

	if err := action.Execute(ctx); err != nil {
		return fmt.Errorf("action %q failed: %w", action.Description(), err)
	}

	rc.performed = append(rc.performed, action)
	return nil
}

// Rollback compensates every performed action in reverse order and clears
// them. All compensations are attempted; their errors are joined.
// Rollback runs even when ctx is already canceled.
func (rc *RequestContext) Rollback(ctx context.Context) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.completed || len(rc.performed) == 0 {
		return nil
	}

	ctx = context.WithoutCancel(ctx)
	logger := logging.FromContext(ctx)

	var errs []error
	for i := len(rc.performed) - 1; i >= 0; i-- {
		action := rc.performed[i]
		if err := action.Rollback(ctx); err != nil {
			logger.ErrorContext(ctx, "compensation failed",
				slog.String("action", action.Description()),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("rollback %q: %w", action.Description(), err))
			continue
		}
		logger.InfoContext(ctx, "compensated", slog.String("action", action.Description()))
	}

	rc.performed = nil
	return errors.Join(errs...)
}

// Complete marks the use case as finished. Performed actions become
// permanent and further Do calls fail with ErrCompleted.
func (rc *RequestContext) Complete() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.completed = true
}

// Performed returns a copy of the recorded actions.
func (rc *RequestContext) Performed() []Action {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	result := make([]Action, len(rc.performed))
	copy(result, rc.performed)
	return result
}
