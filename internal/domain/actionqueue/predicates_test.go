package actionqueue

import (
	"testing"
	"time"

	"github.com/packops/backend/internal/domain/billing"
	"github.com/packops/backend/internal/domain/proofing"
	"github.com/packops/backend/internal/domain/shared/valueobject"
	"github.com/packops/backend/internal/domain/shipping"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func depositInvoice(t *testing.T, totalCents, depositCents int64) *billing.Invoice {
	t.Helper()
	deposit := valueobject.NewMoneyUSD(depositCents)
	inv, err := billing.NewInvoice(
		uuid.New(), uuid.New(), uuid.New(),
		"INV-100",
		valueobject.NewMoneyUSD(totalCents), valueobject.NewMoneyUSD(0),
		true, &deposit, nil,
	)
	require.NoError(t, err)
	return inv
}

func sentInvoice(t *testing.T, due time.Time) *billing.Invoice {
	t.Helper()
	inv, err := billing.NewInvoice(
		uuid.New(), uuid.New(), uuid.New(),
		"INV-200",
		valueobject.NewMoneyUSD(30000), valueobject.NewMoneyUSD(0),
		false, nil, &due,
	)
	require.NoError(t, err)
	_, err = inv.Send(now.Add(-10 * 24 * time.Hour))
	require.NoError(t, err)
	return inv
}

func inFlightShipment(t *testing.T, eta *time.Time, tracking string) *shipping.Shipment {
	t.Helper()
	s, err := shipping.NewShipment(uuid.New(), uuid.New(), uuid.New(), "UPS", eta)
	require.NoError(t, err)
	shippedAt := now.Add(-3 * 24 * time.Hour)
	for _, step := range []shipping.ShipmentStatus{
		shipping.ShipmentStatusPreparing, shipping.ShipmentStatusShipped, shipping.ShipmentStatusInTransit,
	} {
		_, err := s.TransitionTo(step, "", shippedAt)
		require.NoError(t, err)
	}
	if tracking != "" {
		require.NoError(t, s.SetTracking("UPS", tracking, shippedAt))
	}
	return s
}

func TestInvoiceActions(t *testing.T) {
	t.Run("unpaid deposit is urgent", func(t *testing.T) {
		inv := depositInvoice(t, 55000, 27500)

		items := InvoiceActions(inv, now)
		require.Len(t, items, 1)
		assert.Equal(t, ActionDepositUnpaid, items[0].Type)
		assert.Equal(t, PriorityUrgent, items[0].Priority)
		assert.Equal(t, int64(27500), items[0].Metadata["deposit_amount"])
	})

	t.Run("paid deposit clears the item", func(t *testing.T) {
		inv := depositInvoice(t, 55000, 27500)
		require.NoError(t, inv.MarkDepositPaid(now))

		assert.Empty(t, InvoiceActions(inv, now))
	})

	t.Run("due within seven days is normal priority", func(t *testing.T) {
		inv := sentInvoice(t, now.Add(3*24*time.Hour))

		items := InvoiceActions(inv, now)
		require.Len(t, items, 1)
		assert.Equal(t, ActionInvoiceDueSoon, items[0].Type)
		assert.Equal(t, PriorityNormal, items[0].Priority)
	})

	t.Run("due beyond seven days produces nothing", func(t *testing.T) {
		inv := sentInvoice(t, now.Add(9*24*time.Hour))
		assert.Empty(t, InvoiceActions(inv, now))
	})

	t.Run("overdue is urgent and excludes due-soon", func(t *testing.T) {
		inv := sentInvoice(t, now.Add(-2*24*time.Hour))
		_, err := inv.MarkOverdue(now)
		require.NoError(t, err)

		items := InvoiceActions(inv, now)
		require.Len(t, items, 1)
		assert.Equal(t, ActionInvoiceOverdue, items[0].Type)
		assert.Equal(t, PriorityUrgent, items[0].Priority)
	})

	t.Run("unpaid deposit and due-soon stack on a sent invoice", func(t *testing.T) {
		inv := depositInvoice(t, 55000, 27500)
		due := now.Add(3 * 24 * time.Hour)
		inv.DueDate = &due
		_, err := inv.Send(now.Add(-5 * 24 * time.Hour))
		require.NoError(t, err)

		items := InvoiceActions(inv, now)
		require.Len(t, items, 2)
		assert.Equal(t, ActionDepositUnpaid, items[0].Type)
		assert.Equal(t, ActionInvoiceDueSoon, items[1].Type)
	})

	t.Run("paid invoice produces nothing", func(t *testing.T) {
		inv := sentInvoice(t, now.Add(2*24*time.Hour))
		require.NoError(t, inv.RecordPayment(valueobject.NewMoneyUSD(30000), now))

		assert.Empty(t, InvoiceActions(inv, now))
	})
}

func TestProofActions(t *testing.T) {
	pendingProof := func(t *testing.T, age time.Duration) *proofing.FileAsset {
		t.Helper()
		a, err := proofing.NewFileAsset(uuid.New(), uuid.New(), uuid.New(), "proof.pdf", proofing.FileTypeProof, "proofs/proof.pdf")
		require.NoError(t, err)
		a.CreatedAt = now.Add(-age)
		return a
	}

	t.Run("pending beyond two days", func(t *testing.T) {
		a := pendingProof(t, 3*24*time.Hour)

		items := ProofActions(a, now)
		require.Len(t, items, 1)
		assert.Equal(t, ActionProofPending, items[0].Type)
		assert.Equal(t, PriorityNormal, items[0].Priority)
		assert.Equal(t, 3, items[0].DaysOpen)
	})

	t.Run("fresh proof not flagged", func(t *testing.T) {
		a := pendingProof(t, 12*time.Hour)
		assert.Empty(t, ProofActions(a, now))
	})

	t.Run("approved proof not flagged", func(t *testing.T) {
		a := pendingProof(t, 5*24*time.Hour)
		require.NoError(t, a.Approve(now))
		assert.Empty(t, ProofActions(a, now))
	})

	t.Run("superseded version not flagged", func(t *testing.T) {
		a := pendingProof(t, 5*24*time.Hour)
		a.Demote(now)
		assert.Empty(t, ProofActions(a, now))
	})
}

func TestShipmentActions(t *testing.T) {
	t.Run("missing tracking after a day in flight", func(t *testing.T) {
		s := inFlightShipment(t, nil, "")

		items := ShipmentActions(s, now)
		require.Len(t, items, 1)
		assert.Equal(t, ActionMissingTracking, items[0].Type)
		assert.Equal(t, PriorityNormal, items[0].Priority)
	})

	t.Run("eta within two days is at risk", func(t *testing.T) {
		eta := now.Add(24 * time.Hour)
		s := inFlightShipment(t, &eta, "1Z999AA10123456784")

		items := ShipmentActions(s, now)
		require.Len(t, items, 1)
		assert.Equal(t, ActionShipmentEtaRisk, items[0].Type)
		assert.Equal(t, PriorityNormal, items[0].Priority)
	})

	t.Run("past eta is overdue, never both", func(t *testing.T) {
		eta := now.Add(-24 * time.Hour)
		s := inFlightShipment(t, &eta, "1Z999AA10123456784")

		items := ShipmentActions(s, now)
		require.Len(t, items, 1)
		assert.Equal(t, ActionShipmentOverdue, items[0].Type)
		assert.Equal(t, PriorityUrgent, items[0].Priority)
	})

	t.Run("missing tracking stacks with overdue", func(t *testing.T) {
		eta := now.Add(-24 * time.Hour)
		s := inFlightShipment(t, &eta, "")

		items := ShipmentActions(s, now)
		require.Len(t, items, 2)
		assert.Equal(t, ActionMissingTracking, items[0].Type)
		assert.Equal(t, ActionShipmentOverdue, items[1].Type)
	})

	t.Run("delivered shipment produces nothing", func(t *testing.T) {
		eta := now.Add(-24 * time.Hour)
		s := inFlightShipment(t, &eta, "")
		_, err := s.TransitionTo(shipping.ShipmentStatusOutForDelivery, "", now)
		require.NoError(t, err)
		_, err = s.TransitionTo(shipping.ShipmentStatusDelivered, "", now)
		require.NoError(t, err)

		assert.Empty(t, ShipmentActions(s, now))
	})
}

func TestSort(t *testing.T) {
	day := func(d int) *time.Time {
		ts := now.Add(time.Duration(d) * 24 * time.Hour)
		return &ts
	}

	t.Run("priority then due date then created date", func(t *testing.T) {
		items := []ActionItem{
			{Type: ActionInvoiceDueSoon, Priority: PriorityNormal, DueDate: day(5), CreatedDate: now},
			{Type: ActionInvoiceOverdue, Priority: PriorityUrgent, DueDate: day(-1), CreatedDate: now},
			{Type: ActionDepositUnpaid, Priority: PriorityUrgent, DueDate: day(-3), CreatedDate: now},
			{Type: ActionProofPending, Priority: PriorityNormal, CreatedDate: now.Add(-48 * time.Hour)},
		}

		Sort(items)

		got := make([]ActionType, len(items))
		for i, it := range items {
			got[i] = it.Type
		}
		assert.Equal(t, []ActionType{ActionDepositUnpaid, ActionInvoiceOverdue, ActionInvoiceDueSoon, ActionProofPending}, got)
	})

	t.Run("nil due dates sort last within a priority", func(t *testing.T) {
		items := []ActionItem{
			{Type: ActionProofPending, Priority: PriorityNormal, CreatedDate: now.Add(-72 * time.Hour)},
			{Type: ActionInvoiceDueSoon, Priority: PriorityNormal, DueDate: day(6), CreatedDate: now},
		}

		Sort(items)
		assert.Equal(t, ActionInvoiceDueSoon, items[0].Type)
	})

	t.Run("created date breaks ties", func(t *testing.T) {
		older := now.Add(-96 * time.Hour)
		items := []ActionItem{
			{Type: ActionMissingTracking, Priority: PriorityNormal, CreatedDate: now},
			{Type: ActionProofPending, Priority: PriorityNormal, CreatedDate: older},
		}

		Sort(items)
		assert.Equal(t, ActionProofPending, items[0].Type)
	})
}

func TestBuild(t *testing.T) {
	t.Run("full snapshot ranked", func(t *testing.T) {
		depInv := depositInvoice(t, 55000, 27500)
		dueSoon := sentInvoice(t, now.Add(3*24*time.Hour))

		proof, err := proofing.NewFileAsset(uuid.New(), uuid.New(), uuid.New(), "proof.pdf", proofing.FileTypeProof, "proofs/proof.pdf")
		require.NoError(t, err)
		proof.CreatedAt = now.Add(-4 * 24 * time.Hour)

		eta := now.Add(-24 * time.Hour)
		lateShipment := inFlightShipment(t, &eta, "1Z999AA10123456784")

		items := Build(Snapshot{
			Invoices:  []billing.Invoice{*depInv, *dueSoon},
			Proofs:    []proofing.FileAsset{*proof},
			Shipments: []shipping.Shipment{*lateShipment},
		}, now)

		require.Len(t, items, 4)
		priorities := make([]int, len(items))
		for i, it := range items {
			priorities[i] = it.Priority
		}
		assert.Equal(t, []int{1, 1, 2, 2}, priorities)
	})

	t.Run("empty snapshot yields empty queue", func(t *testing.T) {
		items := Build(Snapshot{}, now)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})
}
