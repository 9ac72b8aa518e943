package proofing

import (
	"testing"
	"time"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProof(t *testing.T) *FileAsset {
	t.Helper()
	a, err := NewFileAsset(uuid.New(), uuid.New(), uuid.New(), "box-proof-v1.pdf", FileTypeProof, "proofs/box-proof-v1.pdf")
	require.NoError(t, err)
	return a
}

func TestNewFileAsset(t *testing.T) {
	t.Run("proof starts pending as current version one", func(t *testing.T) {
		a := newTestProof(t)

		assert.Equal(t, 1, a.VersionNumber)
		assert.True(t, a.IsCurrentVersion)
		assert.Nil(t, a.ParentID)
		require.NotNil(t, a.ApprovalStatus)
		assert.Equal(t, ApprovalPending, *a.ApprovalStatus)
	})

	t.Run("document carries no approval state", func(t *testing.T) {
		a, err := NewFileAsset(uuid.New(), uuid.New(), uuid.New(), "po.pdf", FileTypeDocument, "docs/po.pdf")
		require.NoError(t, err)
		assert.Nil(t, a.ApprovalStatus)
	})

	t.Run("rejects invalid file type", func(t *testing.T) {
		_, err := NewFileAsset(uuid.New(), uuid.New(), uuid.New(), "x.pdf", FileType("video"), "k")
		assert.Error(t, err)
	})

	t.Run("rejects empty storage key", func(t *testing.T) {
		_, err := NewFileAsset(uuid.New(), uuid.New(), uuid.New(), "x.pdf", FileTypeProof, "")
		assert.Error(t, err)
	})
}

func TestFileAsset_NewRevision(t *testing.T) {
	t.Run("links to predecessor and increments version", func(t *testing.T) {
		v1 := newTestProof(t)

		v2, err := v1.NewRevision(uuid.New(), "box-proof-v2.pdf", "proofs/box-proof-v2.pdf")
		require.NoError(t, err)
		assert.Equal(t, 2, v2.VersionNumber)
		assert.True(t, v2.IsCurrentVersion)
		require.NotNil(t, v2.ParentID)
		assert.Equal(t, v1.ID, *v2.ParentID)
		assert.Equal(t, v1.OrganizationID, v2.OrganizationID)
		require.NotNil(t, v2.ApprovalStatus)
		assert.Equal(t, ApprovalPending, *v2.ApprovalStatus)
	})

	t.Run("superseded version cannot spawn a revision", func(t *testing.T) {
		v1 := newTestProof(t)
		v1.Demote(time.Now())

		_, err := v1.NewRevision(uuid.New(), "", "proofs/late.pdf")
		assert.Error(t, err)
	})

	t.Run("non-proof has no revision chain", func(t *testing.T) {
		a, err := NewFileAsset(uuid.New(), uuid.New(), uuid.New(), "logo.ai", FileTypeArtwork, "art/logo.ai")
		require.NoError(t, err)

		_, err = a.NewRevision(uuid.New(), "", "art/logo2.ai")
		assert.Error(t, err)
	})
}

func TestFileAsset_Demote(t *testing.T) {
	now := time.Now()

	t.Run("pending proof becomes revision", func(t *testing.T) {
		a := newTestProof(t)
		a.Demote(now)

		assert.False(t, a.IsCurrentVersion)
		assert.Equal(t, ApprovalRevision, *a.ApprovalStatus)
	})

	t.Run("final status survives demotion", func(t *testing.T) {
		a := newTestProof(t)
		require.NoError(t, a.Approve(now))
		require.NoError(t, a.MarkFinal(now))

		a.Demote(now)
		assert.False(t, a.IsCurrentVersion)
		assert.Equal(t, ApprovalFinal, *a.ApprovalStatus)
	})
}

func TestFileAsset_Approve(t *testing.T) {
	now := time.Now()

	t.Run("pending to approved", func(t *testing.T) {
		a := newTestProof(t)

		require.NoError(t, a.Approve(now))
		assert.Equal(t, ApprovalApproved, *a.ApprovalStatus)
		require.NotNil(t, a.ApprovedAt)
	})

	t.Run("approve is idempotent", func(t *testing.T) {
		a := newTestProof(t)
		require.NoError(t, a.Approve(now))
		events := len(a.GetDomainEvents())

		require.NoError(t, a.Approve(now))
		assert.Len(t, a.GetDomainEvents(), events)
	})

	t.Run("rejected proof cannot be approved", func(t *testing.T) {
		a := newTestProof(t)
		require.NoError(t, a.Reject("wrong colors", now))

		assert.ErrorIs(t, a.Approve(now), shared.ErrInvalidTransition)
	})

	t.Run("document cannot be approved", func(t *testing.T) {
		a, err := NewFileAsset(uuid.New(), uuid.New(), uuid.New(), "po.pdf", FileTypeDocument, "docs/po.pdf")
		require.NoError(t, err)

		assert.ErrorIs(t, a.Approve(now), shared.ErrInvalidTransition)
	})
}

func TestFileAsset_Reject(t *testing.T) {
	now := time.Now()

	t.Run("pending to rejected with reason", func(t *testing.T) {
		a := newTestProof(t)

		require.NoError(t, a.Reject("bleed is off", now))
		assert.Equal(t, ApprovalRejected, *a.ApprovalStatus)
		assert.Equal(t, "bleed is off", a.RejectionReason)
		require.NotNil(t, a.RejectedAt)
	})

	t.Run("reason is required", func(t *testing.T) {
		a := newTestProof(t)

		err := a.Reject("   ", now)
		require.Error(t, err)
		assert.Equal(t, ApprovalPending, *a.ApprovalStatus)
	})

	t.Run("approved proof cannot be rejected", func(t *testing.T) {
		a := newTestProof(t)
		require.NoError(t, a.Approve(now))

		assert.ErrorIs(t, a.Reject("changed my mind", now), shared.ErrInvalidTransition)
	})
}

func TestFileAsset_MarkFinal(t *testing.T) {
	now := time.Now()

	t.Run("approved current version", func(t *testing.T) {
		a := newTestProof(t)
		require.NoError(t, a.Approve(now))

		require.NoError(t, a.MarkFinal(now))
		assert.Equal(t, ApprovalFinal, *a.ApprovalStatus)
	})

	t.Run("pending proof cannot be finalized", func(t *testing.T) {
		a := newTestProof(t)
		assert.ErrorIs(t, a.MarkFinal(now), shared.ErrInvalidTransition)
	})

	t.Run("superseded version cannot be finalized", func(t *testing.T) {
		a := newTestProof(t)
		require.NoError(t, a.Approve(now))
		a.IsCurrentVersion = false

		assert.ErrorIs(t, a.MarkFinal(now), shared.ErrInvalidTransition)
	})
}

func TestFileAsset_IsPendingProof(t *testing.T) {
	now := time.Now()

	a := newTestProof(t)
	assert.True(t, a.IsPendingProof())

	require.NoError(t, a.Approve(now))
	assert.False(t, a.IsPendingProof())

	b := newTestProof(t)
	b.Demote(now)
	assert.False(t, b.IsPendingProof())
}

func TestFileAsset_CheckInvariants(t *testing.T) {
	t.Run("proof without approval status fails", func(t *testing.T) {
		a := newTestProof(t)
		a.ApprovalStatus = nil
		assert.ErrorIs(t, a.CheckInvariants(), shared.ErrDataIntegrity)
	})

	t.Run("later version without parent fails", func(t *testing.T) {
		a := newTestProof(t)
		a.VersionNumber = 3
		a.ParentID = nil
		assert.ErrorIs(t, a.CheckInvariants(), shared.ErrDataIntegrity)
	})
}
