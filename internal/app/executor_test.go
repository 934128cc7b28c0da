package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
)

type recordedSteps []Step

func (r *recordedSteps) op(failAt Step, err error) Operation[int, int, int, string] {
	mark := func(s Step) error {
		*r = append(*r, s)
		if s == failAt {
			return err
		}
		return nil
	}

	return Operation[int, int, int, string]{
		Name:     "price_items",
		Validate: func(context.Context, int) error { return mark(StepValidate) },
		Perform: func(_ context.Context, in int) (int, error) {
			return in * 2, mark(StepPerform)
		},
		Verify: func(_ context.Context, _ int, performed int) (int, error) {
			return performed + 1, mark(StepVerify)
		},
		Archive: func(context.Context, int, int) error { return mark(StepArchive) },
		Respond: func(_ context.Context, _ int, verified int) (string, error) {
			if err := mark(StepRespond); err != nil {
				return "", err
			}
			return "total=" + string(rune('0'+verified)), nil
		},
	}
}

func TestExecute_RunsStepsInOrder(t *testing.T) {
	var steps recordedSteps

	out, err := Execute(context.Background(), NewExecutor(nil), steps.op("", nil), 3)

	require.NoError(t, err)
	assert.Equal(t, "total=7", out)
	assert.Equal(t, recordedSteps{StepValidate, StepPerform, StepVerify, StepArchive, StepRespond}, steps)
}

func TestExecute_StopsAtFailingStep(t *testing.T) {
	cause := domain.NewValidationError("items", "must contain at least one item")

	for _, failAt := range []Step{StepValidate, StepPerform, StepVerify, StepArchive, StepRespond} {
		t.Run(string(failAt), func(t *testing.T) {
			var steps recordedSteps

			out, err := Execute(context.Background(), NewExecutor(nil), steps.op(failAt, cause), 1)

			require.Error(t, err)
			assert.Empty(t, out)
			assert.Equal(t, failAt, steps[len(steps)-1])

			step, ok := FailedStep(err)
			require.True(t, ok)
			assert.Equal(t, failAt, step)
			assert.True(t, domain.IsValidation(err))
			assert.Contains(t, err.Error(), "price_items: "+string(failAt)+" step")
		})
	}
}

func TestExecute_NilStepsAreSkipped(t *testing.T) {
	archived := -1
	op := Operation[string, string, string, string]{
		Name: "archive_only",
		Archive: func(_ context.Context, _ string, verified string) error {
			archived = len(verified)
			return nil
		},
	}

	out, err := Execute(context.Background(), NewExecutor(nil), op, "ignored")

	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Zero(t, archived)
}

func TestExecute_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	exec := NewExecutor(slog.New(slog.NewTextHandler(&buf, nil)))

	op := Operation[int, int, int, int]{
		Name:    "create_quote",
		Archive: func(context.Context, int, int) error { return errors.New("disk full") },
	}
	_, err := Execute(context.Background(), exec, op, 0)

	require.Error(t, err)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "operation=create_quote")
	assert.Contains(t, buf.String(), "step=archive")
	assert.Contains(t, buf.String(), "disk full")
}

func TestFailedStep_PlainError(t *testing.T) {
	_, ok := FailedStep(errors.New("boom"))
	assert.False(t, ok)
}
