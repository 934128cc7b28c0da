package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/offermaster-service/internal/platform/logging"
)

// Write operations that touch object storage run as a five-step pipeline:
//
//	validate  check input and load referenced rows; nothing is written
//	perform   upload objects, registering their deletion with the request context
//	verify    turn the upload result into the entity to persist
//	archive   insert the entity in one transaction
//	respond   shape the result for the caller
//
// The executor only sequences and logs the steps. Compensation for a failed
// archive belongs to the caller's appctx.RequestContext.

// Step names one stage of an Operation.
type Step string

const (
	StepValidate Step = "validate"
	StepPerform  Step = "perform"
	StepVerify   Step = "verify"
	StepArchive  Step = "archive"
	StepRespond  Step = "respond"
)

// StepError records which step of an operation failed. It unwraps to the
// step's own error, so domain error checks see through it.
type StepError struct {
	Operation string
	Step      Step
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s step: %v", e.Operation, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// FailedStep reports the step an Execute error came from.
func FailedStep(err error) (Step, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step, true
	}
	return "", false
}

// Operation is the set of step functions for one use case. I is the input,
// P the perform result, V the verified entity and O the caller's result.
// Nil steps are skipped and yield their zero value.
type Operation[I, P, V, O any] struct {
	Name     string
	Validate func(ctx context.Context, in I) error
	Perform  func(ctx context.Context, in I) (P, error)
	Verify   func(ctx context.Context, in I, performed P) (V, error)
	Archive  func(ctx context.Context, in I, verified V) error
	Respond  func(ctx context.Context, in I, verified V) (O, error)
}

// Executor runs Operations. The logger is used when the context carries none.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor returns an executor logging to logger, or slog.Default when nil.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{logger: logger}
}

func (x *Executor) loggerFor(ctx context.Context) *slog.Logger {
	if logging.HasLogger(ctx) {
		return logging.FromContext(ctx)
	}
	return x.logger
}

// Execute runs op over in. The first failing step stops the pipeline and its
// error is returned wrapped in a *StepError.
func Execute[I, P, V, O any](ctx context.Context, x *Executor, op Operation[I, P, V, O], in I) (O, error) {
	var out O

	logger := x.loggerFor(ctx).With(slog.String("operation", op.Name))
	start := time.Now()

	fail := func(step Step, err error) (O, error) {
		level := slog.LevelError
		if step == StepValidate {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "operation step failed",
			slog.String("step", string(step)),
			slog.Any("error", err))
		return out, &StepError{Operation: op.Name, Step: step, Err: err}
	}

	if op.Validate != nil {
		if err := op.Validate(ctx, in); err != nil {
			return fail(StepValidate, err)
		}
	}

	var performed P
	if op.Perform != nil {
		var err error
		if performed, err = op.Perform(ctx, in); err != nil {
			return fail(StepPerform, err)
		}
	}

	var verified V
	if op.Verify != nil {
		var err error
		if verified, err = op.Verify(ctx, in, performed); err != nil {
			return fail(StepVerify, err)
		}
	}

	if op.Archive != nil {
		if err := op.Archive(ctx, in, verified); err != nil {
			return fail(StepArchive, err)
		}
	}

	if op.Respond != nil {
		var err error
		if out, err = op.Respond(ctx, in, verified); err != nil {
			return fail(StepRespond, err)
		}
	}

	logger.DebugContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))
	return out, nil
}
