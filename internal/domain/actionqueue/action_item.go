package actionqueue

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ActionType tags one kind of actionable item in the queue
type ActionType string

const (
	ActionDepositUnpaid    ActionType = "deposit_unpaid"
	ActionInvoiceDueSoon   ActionType = "invoice_due_soon"
	ActionInvoiceOverdue   ActionType = "invoice_overdue"
	ActionProofPending     ActionType = "proof_pending"
	ActionMissingTracking  ActionType = "shipment_missing_tracking"
	ActionShipmentEtaRisk  ActionType = "shipment_eta_risk"
	ActionShipmentOverdue  ActionType = "shipment_overdue"
)

// Priorities. Lower sorts first.
const (
	PriorityUrgent = 1
	PriorityNormal = 2
)

// ActionItem is one entry in the ranked cross-entity feed. The queue is a
// pure function of entity state plus now; items carry no identity of their
// own and are re-derivable at any time.
type ActionItem struct {
	Type           ActionType     `json:"type"`
	Priority       int            `json:"priority"`
	RecordID       uuid.UUID      `json:"record_id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	OrganizationID uuid.UUID      `json:"organization_id"`
	ProjectID      uuid.UUID      `json:"project_id"`
	CreatedDate    time.Time      `json:"created_date"`
	DueDate        *time.Time     `json:"due_date,omitempty"`
	DaysOpen       int            `json:"days_open"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Sort orders items by priority ascending, then due date ascending with nulls
// last, then created date ascending. Stable so equal items keep scan order.
func Sort(items []ActionItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			// fall through to created date
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		case !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}
		return a.CreatedDate.Before(b.CreatedDate)
	})
}

// daysOpen returns full days elapsed since the record was created
func daysOpen(createdAt, now time.Time) int {
	d := int(now.Sub(createdAt).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
