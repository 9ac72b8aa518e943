package project

import (
	"testing"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProject(t *testing.T) *Project {
	t.Helper()
	p, err := NewProject(uuid.New(), uuid.New(), "Holiday gift boxes", "Q4 custom run")
	require.NoError(t, err)
	return p
}

func TestNewProject(t *testing.T) {
	t.Run("starts active", func(t *testing.T) {
		p := newTestProject(t)
		assert.Equal(t, StatusActive, p.Status)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewProject(uuid.New(), uuid.New(), "  ", "")
		assert.Error(t, err)
	})

	t.Run("rejects missing organization", func(t *testing.T) {
		_, err := NewProject(uuid.Nil, uuid.New(), "x", "")
		assert.Error(t, err)
	})
}

func TestProject_Lifecycle(t *testing.T) {
	t.Run("hold and resume", func(t *testing.T) {
		p := newTestProject(t)

		require.NoError(t, p.Hold())
		assert.Equal(t, StatusOnHold, p.Status)

		require.NoError(t, p.Resume())
		assert.Equal(t, StatusActive, p.Status)
	})

	t.Run("complete from active only", func(t *testing.T) {
		p := newTestProject(t)
		require.NoError(t, p.Hold())

		assert.ErrorIs(t, p.Complete(), shared.ErrInvalidTransition)

		require.NoError(t, p.Resume())
		require.NoError(t, p.Complete())
		require.NotNil(t, p.CompletedAt)
	})

	t.Run("cancel from any non-terminal state", func(t *testing.T) {
		p := newTestProject(t)
		require.NoError(t, p.Hold())

		require.NoError(t, p.Cancel())
		assert.Equal(t, StatusCancelled, p.Status)
	})

	t.Run("completed project cannot be cancelled", func(t *testing.T) {
		p := newTestProject(t)
		require.NoError(t, p.Complete())

		assert.ErrorIs(t, p.Cancel(), shared.ErrInvalidTransition)
	})

	t.Run("repeated hold is a no-op", func(t *testing.T) {
		p := newTestProject(t)
		require.NoError(t, p.Hold())
		require.NoError(t, p.Hold())
	})
}
