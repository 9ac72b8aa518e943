package actionqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/packops/backend/internal/domain/actionqueue"
	"github.com/packops/backend/internal/domain/authz"
	"github.com/packops/backend/internal/domain/billing"
	"github.com/packops/backend/internal/domain/identity"
	"github.com/packops/backend/internal/domain/proofing"
	"github.com/packops/backend/internal/domain/shared"
	"github.com/packops/backend/internal/domain/shared/valueobject"
	"github.com/packops/backend/internal/domain/shipping"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockSnapshotRepository is a mock implementation of actionqueue.SnapshotRepository
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) LoadAll(ctx context.Context) (actionqueue.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(actionqueue.Snapshot), args.Error(1)
}

func (m *MockSnapshotRepository) LoadForOrg(ctx context.Context, orgID uuid.UUID) (actionqueue.Snapshot, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(actionqueue.Snapshot), args.Error(1)
}

func createQueueService(snapshots *MockSnapshotRepository) *Service {
	return NewService(snapshots, authz.NewEvaluator(), zap.NewNop())
}

func createOverdueInvoice(orgID uuid.UUID) *billing.Invoice {
	pastDue := time.Now().Add(-72 * time.Hour)
	inv, err := billing.NewInvoice(orgID, uuid.New(), uuid.New(), "INV-3001",
		valueobject.NewMoneyUSD(25000), valueobject.NewMoneyUSD(0), false, nil, &pastDue)
	if err != nil {
		panic(err)
	}
	if _, err := inv.Send(time.Now().Add(-96 * time.Hour)); err != nil {
		panic(err)
	}
	if _, err := inv.MarkOverdue(time.Now()); err != nil {
		panic(err)
	}
	return inv
}

func createStalePendingProof(orgID uuid.UUID) *proofing.FileAsset {
	a, err := proofing.NewFileAsset(orgID, uuid.New(), uuid.New(), "label-proof.pdf", proofing.FileTypeProof, "proofs/label-proof.pdf")
	if err != nil {
		panic(err)
	}
	a.CreatedAt = time.Now().Add(-96 * time.Hour)
	return a
}

func createUntrackedShipment(orgID uuid.UUID) *shipping.Shipment {
	sh, err := shipping.NewShipment(orgID, uuid.New(), uuid.New(), "FedEx", nil)
	if err != nil {
		panic(err)
	}
	now := time.Now()
	for _, next := range []shipping.ShipmentStatus{shipping.ShipmentStatusPreparing, shipping.ShipmentStatusShipped} {
		if _, err := sh.TransitionTo(next, "", now); err != nil {
			panic(err)
		}
	}
	shippedAt := now.Add(-48 * time.Hour)
	sh.ActualShipDate = &shippedAt
	return sh
}

func TestService_GetQueue_InternalSeesAllOrganizations(t *testing.T) {
	snapshots := new(MockSnapshotRepository)
	service := createQueueService(snapshots)

	caller := identity.PrincipalContext{
		PrincipalID:    uuid.New(),
		OrganizationID: uuid.New(),
		Role:           identity.RoleStaff,
		OrgKind:        identity.OrgKindInternal,
	}

	snap := actionqueue.Snapshot{
		Invoices:  []billing.Invoice{*createOverdueInvoice(uuid.New())},
		Proofs:    []proofing.FileAsset{*createStalePendingProof(uuid.New())},
		Shipments: []shipping.Shipment{*createUntrackedShipment(uuid.New())},
	}

	ctx := context.Background()
	snapshots.On("LoadAll", ctx).Return(snap, nil)

	items, err := service.GetQueue(ctx, caller)

	assert.NoError(t, err)
	assert.Len(t, items, 3)
	// Urgent overdue invoice ranks ahead of the normal-priority items
	assert.Equal(t, actionqueue.ActionInvoiceOverdue, items[0].Type)
	assert.Equal(t, actionqueue.PriorityUrgent, items[0].Priority)
	snapshots.AssertNotCalled(t, "LoadForOrg", mock.Anything, mock.Anything)
	snapshots.AssertExpectations(t)
}

func TestService_GetQueue_CustomerScopedWithoutDrafts(t *testing.T) {
	snapshots := new(MockSnapshotRepository)
	service := createQueueService(snapshots)

	orgID := uuid.New()
	caller := identity.PrincipalContext{
		PrincipalID:    uuid.New(),
		OrganizationID: orgID,
		Role:           identity.RoleCustomer,
		OrgKind:        identity.OrgKindCustomer,
	}

	snap := actionqueue.Snapshot{
		Invoices: []billing.Invoice{*createOverdueInvoice(orgID)},
	}

	ctx := context.Background()
	snapshots.On("LoadForOrg", ctx, orgID).Return(snap, nil)

	items, err := service.GetQueue(ctx, caller)

	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, actionqueue.ActionInvoiceOverdue, items[0].Type)
	snapshots.AssertNotCalled(t, "LoadAll", mock.Anything)
	snapshots.AssertExpectations(t)
}

func TestService_GetQueue_UnauthenticatedDenied(t *testing.T) {
	snapshots := new(MockSnapshotRepository)
	service := createQueueService(snapshots)

	_, err := service.GetQueue(context.Background(), identity.PrincipalContext{})

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "UNAUTHENTICATED", domainErr.Code)
	snapshots.AssertNotCalled(t, "LoadAll", mock.Anything)
	snapshots.AssertNotCalled(t, "LoadForOrg", mock.Anything, mock.Anything)
}

func TestService_GetQueue_SnapshotLoadError(t *testing.T) {
	snapshots := new(MockSnapshotRepository)
	service := createQueueService(snapshots)

	caller := identity.PrincipalContext{
		PrincipalID:    uuid.New(),
		OrganizationID: uuid.New(),
		Role:           identity.RoleStaff,
		OrgKind:        identity.OrgKindInternal,
	}

	ctx := context.Background()
	snapshots.On("LoadAll", ctx).Return(actionqueue.Snapshot{}, errors.New("connection reset"))

	_, err := service.GetQueue(ctx, caller)

	assert.Error(t, err)
}

func TestService_GetQueueDepthByReason(t *testing.T) {
	snapshots := new(MockSnapshotRepository)
	service := createQueueService(snapshots)

	snap := actionqueue.Snapshot{
		Invoices: []billing.Invoice{*createOverdueInvoice(uuid.New()), *createOverdueInvoice(uuid.New())},
		Proofs:   []proofing.FileAsset{*createStalePendingProof(uuid.New())},
	}

	ctx := context.Background()
	snapshots.On("LoadAll", ctx).Return(snap, nil)

	depths, err := service.GetQueueDepthByReason(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), depths["invoice_overdue"])
	assert.Equal(t, int64(1), depths["proof_pending"])
}
