package billing

import (
	"testing"
	"time"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/packops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv, err := NewInvoice(
		uuid.New(), uuid.New(), uuid.New(),
		"INV-2026-001",
		valueobject.NewMoneyUSD(50000),
		valueobject.NewMoneyUSD(5000),
		false, nil, nil,
	)
	require.NoError(t, err)
	return inv
}

func newTestDepositInvoice(t *testing.T) *Invoice {
	t.Helper()
	deposit := valueobject.NewMoneyUSD(27500)
	inv, err := NewInvoice(
		uuid.New(), uuid.New(), uuid.New(),
		"INV-2026-002",
		valueobject.NewMoneyUSD(55000),
		valueobject.NewMoneyUSD(0),
		true, &deposit, nil,
	)
	require.NoError(t, err)
	return inv
}

func TestInvoiceStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  InvoiceStatus
		isValid bool
	}{
		{InvoiceStatusDraft, true},
		{InvoiceStatusSent, true},
		{InvoiceStatusOverdue, true},
		{InvoiceStatusPaid, true},
		{InvoiceStatusCancelled, true},
		{InvoiceStatus("unknown"), false},
		{InvoiceStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestNewInvoice(t *testing.T) {
	t.Run("creates draft with derived total", func(t *testing.T) {
		inv := newTestInvoice(t)

		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.Equal(t, int64(55000), inv.Total.Amount())
		assert.Equal(t, int64(0), inv.Paid.Amount())
		assert.Equal(t, int64(55000), inv.BalanceDue().Amount())
		assert.Len(t, inv.GetDomainEvents(), 1)
	})

	t.Run("rejects required deposit without amount", func(t *testing.T) {
		_, err := NewInvoice(
			uuid.New(), uuid.New(), uuid.New(),
			"INV-X",
			valueobject.NewMoneyUSD(1000), valueobject.NewMoneyUSD(0),
			true, nil, nil,
		)
		require.Error(t, err)
		domainErr := &shared.DomainError{}
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	})

	t.Run("rejects deposit exceeding total", func(t *testing.T) {
		deposit := valueobject.NewMoneyUSD(2000)
		_, err := NewInvoice(
			uuid.New(), uuid.New(), uuid.New(),
			"INV-X",
			valueobject.NewMoneyUSD(1000), valueobject.NewMoneyUSD(0),
			true, &deposit, nil,
		)
		assert.Error(t, err)
	})

	t.Run("rejects empty invoice number", func(t *testing.T) {
		_, err := NewInvoice(
			uuid.New(), uuid.New(), uuid.New(),
			"  ",
			valueobject.NewMoneyUSD(1000), valueobject.NewMoneyUSD(0),
			false, nil, nil,
		)
		assert.Error(t, err)
	})
}

func TestInvoice_Send(t *testing.T) {
	now := time.Now()

	t.Run("draft to sent", func(t *testing.T) {
		inv := newTestInvoice(t)

		changed, err := inv.Send(now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, InvoiceStatusSent, inv.Status)
		require.NotNil(t, inv.SentAt)
	})

	t.Run("already sent is a no-op", func(t *testing.T) {
		inv := newTestInvoice(t)
		_, err := inv.Send(now)
		require.NoError(t, err)
		events := len(inv.GetDomainEvents())

		changed, err := inv.Send(now)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Len(t, inv.GetDomainEvents(), events)
	})

	t.Run("zero total cannot be sent", func(t *testing.T) {
		inv, err := NewInvoice(
			uuid.New(), uuid.New(), uuid.New(),
			"INV-Z",
			valueobject.NewMoneyUSD(0), valueobject.NewMoneyUSD(0),
			false, nil, nil,
		)
		require.NoError(t, err)

		_, err = inv.Send(now)
		assert.Error(t, err)
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
	})

	t.Run("cancelled cannot be sent", func(t *testing.T) {
		inv := newTestInvoice(t)
		_, err := inv.Cancel("duplicate", now)
		require.NoError(t, err)

		_, err = inv.Send(now)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
	})
}

func TestInvoice_MarkOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	sentInvoice := func(t *testing.T, due *time.Time) *Invoice {
		inv := newTestInvoice(t)
		inv.DueDate = due
		_, err := inv.Send(now.Add(-72 * time.Hour))
		require.NoError(t, err)
		return inv
	}

	t.Run("sent past due with balance", func(t *testing.T) {
		inv := sentInvoice(t, &past)

		changed, err := inv.MarkOverdue(now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, InvoiceStatusOverdue, inv.Status)
	})

	t.Run("already overdue is a no-op, no duplicate event", func(t *testing.T) {
		inv := sentInvoice(t, &past)
		_, err := inv.MarkOverdue(now)
		require.NoError(t, err)
		events := len(inv.GetDomainEvents())

		changed, err := inv.MarkOverdue(now)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Len(t, inv.GetDomainEvents(), events)
	})

	t.Run("due date in the future rejected", func(t *testing.T) {
		inv := sentInvoice(t, &future)

		_, err := inv.MarkOverdue(now)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.Equal(t, InvoiceStatusSent, inv.Status)
	})

	t.Run("no due date rejected", func(t *testing.T) {
		inv := sentInvoice(t, nil)

		_, err := inv.MarkOverdue(now)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
	})

	t.Run("fully paid invoice never goes overdue", func(t *testing.T) {
		inv := sentInvoice(t, &past)
		require.NoError(t, inv.RecordPayment(valueobject.NewMoneyUSD(55000), now))

		_, err := inv.MarkOverdue(now)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})
}

func TestInvoice_RecordPayment(t *testing.T) {
	now := time.Now()

	t.Run("partial payment keeps status, balance derived", func(t *testing.T) {
		inv := newTestInvoice(t)
		_, err := inv.Send(now)
		require.NoError(t, err)

		require.NoError(t, inv.RecordPayment(valueobject.NewMoneyUSD(20000), now))
		assert.Equal(t, InvoiceStatusSent, inv.Status)
		assert.Equal(t, int64(35000), inv.BalanceDue().Amount())
		assert.Equal(t, inv.Total.Amount()-inv.Paid.Amount(), inv.BalanceDue().Amount())
	})

	t.Run("full payment transitions to paid", func(t *testing.T) {
		inv := newTestInvoice(t)
		_, err := inv.Send(now)
		require.NoError(t, err)

		require.NoError(t, inv.RecordPayment(valueobject.NewMoneyUSD(55000), now))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.BalanceDue().IsZero())
		require.NotNil(t, inv.PaidAt)
	})

	t.Run("overdue invoice can still be paid", func(t *testing.T) {
		inv := newTestInvoice(t)
		past := now.Add(-24 * time.Hour)
		inv.DueDate = &past
		_, err := inv.Send(now.Add(-48 * time.Hour))
		require.NoError(t, err)
		_, err = inv.MarkOverdue(now)
		require.NoError(t, err)

		require.NoError(t, inv.RecordPayment(valueobject.NewMoneyUSD(55000), now))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("overpayment rejected without mutation", func(t *testing.T) {
		inv := newTestInvoice(t)
		_, err := inv.Send(now)
		require.NoError(t, err)

		err = inv.RecordPayment(valueobject.NewMoneyUSD(60000), now)
		assert.Error(t, err)
		assert.Equal(t, int64(0), inv.Paid.Amount())
		assert.Equal(t, InvoiceStatusSent, inv.Status)
	})

	t.Run("draft cannot accept payment", func(t *testing.T) {
		inv := newTestInvoice(t)

		err := inv.RecordPayment(valueobject.NewMoneyUSD(100), now)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
	})
}

func TestInvoice_MarkDepositPaid(t *testing.T) {
	now := time.Now()

	t.Run("deposit paid in draft", func(t *testing.T) {
		inv := newTestDepositInvoice(t)

		require.NoError(t, inv.MarkDepositPaid(now))
		assert.True(t, inv.DepositPaid)
		require.NotNil(t, inv.DepositPaidAt)
		assert.Equal(t, int64(27500), inv.Paid.Amount())
		assert.False(t, inv.DepositOutstanding())
	})

	t.Run("idempotent", func(t *testing.T) {
		inv := newTestDepositInvoice(t)
		require.NoError(t, inv.MarkDepositPaid(now))
		paid := inv.Paid.Amount()

		require.NoError(t, inv.MarkDepositPaid(now))
		assert.Equal(t, paid, inv.Paid.Amount())
	})

	t.Run("no deposit required", func(t *testing.T) {
		inv := newTestInvoice(t)
		assert.Error(t, inv.MarkDepositPaid(now))
	})
}

func TestInvoice_Cancel(t *testing.T) {
	now := time.Now()

	t.Run("from draft", func(t *testing.T) {
		inv := newTestInvoice(t)
		changed, err := inv.Cancel("customer withdrew", now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, InvoiceStatusCancelled, inv.Status)
	})

	t.Run("from sent", func(t *testing.T) {
		inv := newTestInvoice(t)
		_, err := inv.Send(now)
		require.NoError(t, err)

		changed, err := inv.Cancel("duplicate", now)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("paid invoice cannot be cancelled", func(t *testing.T) {
		inv := newTestInvoice(t)
		_, err := inv.Send(now)
		require.NoError(t, err)
		require.NoError(t, inv.RecordPayment(valueobject.NewMoneyUSD(55000), now))

		_, err = inv.Cancel("too late", now)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
	})

	t.Run("overdue invoice cannot be cancelled", func(t *testing.T) {
		inv := newTestInvoice(t)
		past := now.Add(-24 * time.Hour)
		inv.DueDate = &past
		_, err := inv.Send(now.Add(-48 * time.Hour))
		require.NoError(t, err)
		_, err = inv.MarkOverdue(now)
		require.NoError(t, err)

		_, err = inv.Cancel("late cancel", now)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
	})

	t.Run("requires reason", func(t *testing.T) {
		inv := newTestInvoice(t)
		_, err := inv.Cancel("  ", now)
		assert.Error(t, err)
	})
}

func TestInvoice_BalanceInvariant(t *testing.T) {
	now := time.Now()
	inv := newTestDepositInvoice(t)

	require.NoError(t, inv.MarkDepositPaid(now))
	assert.Equal(t, inv.Total.Amount()-inv.Paid.Amount(), inv.BalanceDue().Amount())

	_, err := inv.Send(now)
	require.NoError(t, err)
	assert.Equal(t, inv.Total.Amount()-inv.Paid.Amount(), inv.BalanceDue().Amount())

	require.NoError(t, inv.RecordPayment(valueobject.NewMoneyUSD(27500), now))
	assert.Equal(t, inv.Total.Amount()-inv.Paid.Amount(), inv.BalanceDue().Amount())
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
}

func TestInvoice_CheckInvariants(t *testing.T) {
	t.Run("healthy invoice passes", func(t *testing.T) {
		inv := newTestDepositInvoice(t)
		assert.NoError(t, inv.CheckInvariants())
	})

	t.Run("paid above total fails", func(t *testing.T) {
		inv := newTestInvoice(t)
		inv.Paid = valueobject.NewMoneyUSD(99999)
		assert.ErrorIs(t, inv.CheckInvariants(), shared.ErrDataIntegrity)
	})

	t.Run("deposit flag without timestamp fails", func(t *testing.T) {
		inv := newTestDepositInvoice(t)
		inv.DepositPaid = true
		assert.ErrorIs(t, inv.CheckInvariants(), shared.ErrDataIntegrity)
	})
}
