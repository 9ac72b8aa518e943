package actionqueue

import (
	"fmt"
	"time"

	"github.com/packops/backend/internal/domain/billing"
	"github.com/packops/backend/internal/domain/proofing"
	"github.com/packops/backend/internal/domain/shipping"
)

// Fixed windows for the queue predicates
const (
	DueSoonWindow   = 7 * 24 * time.Hour // invoice due within a week
	ProofPendingAge = 2 * 24 * time.Hour // proof awaiting review too long
	EtaRiskWindow   = 2 * 24 * time.Hour // delivery expected imminently
)

// InvoiceActions evaluates the invoice predicates against one invoice
func InvoiceActions(inv *billing.Invoice, now time.Time) []ActionItem {
	var items []ActionItem

	if inv.DepositOutstanding() {
		var deposit int64
		if inv.DepositAmount != nil {
			deposit = inv.DepositAmount.Amount()
		}
		items = append(items, ActionItem{
			Type:           ActionDepositUnpaid,
			Priority:       PriorityUrgent,
			RecordID:       inv.ID,
			Title:          fmt.Sprintf("Deposit unpaid on invoice %s", inv.InvoiceNumber),
			Description:    fmt.Sprintf("A deposit of %d is required before work begins", deposit),
			OrganizationID: inv.OrganizationID,
			ProjectID:      inv.ProjectID,
			CreatedDate:    inv.CreatedAt,
			DueDate:        inv.DueDate,
			DaysOpen:       daysOpen(inv.CreatedAt, now),
			Metadata: map[string]any{
				"invoice_number": inv.InvoiceNumber,
				"deposit_amount": deposit,
			},
		})
	}

	switch {
	case inv.IsOverdue():
		items = append(items, ActionItem{
			Type:           ActionInvoiceOverdue,
			Priority:       PriorityUrgent,
			RecordID:       inv.ID,
			Title:          fmt.Sprintf("Invoice %s is overdue", inv.InvoiceNumber),
			Description:    fmt.Sprintf("Outstanding balance of %d is past due", inv.BalanceDue().Amount()),
			OrganizationID: inv.OrganizationID,
			ProjectID:      inv.ProjectID,
			CreatedDate:    inv.CreatedAt,
			DueDate:        inv.DueDate,
			DaysOpen:       daysOpen(inv.CreatedAt, now),
			Metadata: map[string]any{
				"invoice_number": inv.InvoiceNumber,
				"balance_due":    inv.BalanceDue().Amount(),
			},
		})
	case inv.Status == billing.InvoiceStatusSent &&
		inv.BalanceDue().IsPositive() &&
		inv.DueDate != nil &&
		!inv.DueDate.Before(now) &&
		inv.DueDate.Sub(now) <= DueSoonWindow:
		items = append(items, ActionItem{
			Type:           ActionInvoiceDueSoon,
			Priority:       PriorityNormal,
			RecordID:       inv.ID,
			Title:          fmt.Sprintf("Invoice %s due soon", inv.InvoiceNumber),
			Description:    fmt.Sprintf("Balance of %d is due within 7 days", inv.BalanceDue().Amount()),
			OrganizationID: inv.OrganizationID,
			ProjectID:      inv.ProjectID,
			CreatedDate:    inv.CreatedAt,
			DueDate:        inv.DueDate,
			DaysOpen:       daysOpen(inv.CreatedAt, now),
			Metadata: map[string]any{
				"invoice_number": inv.InvoiceNumber,
				"balance_due":    inv.BalanceDue().Amount(),
			},
		})
	}

	return items
}

// ProofActions evaluates the proof predicate against one file asset
func ProofActions(a *proofing.FileAsset, now time.Time) []ActionItem {
	if !a.IsPendingProof() || a.PendingAge(now) <= ProofPendingAge {
		return nil
	}
	return []ActionItem{{
		Type:           ActionProofPending,
		Priority:       PriorityNormal,
		RecordID:       a.ID,
		Title:          fmt.Sprintf("Proof %s awaiting approval", a.FileName),
		Description:    fmt.Sprintf("Version %d has been pending review for %d days", a.VersionNumber, daysOpen(a.CreatedAt, now)),
		OrganizationID: a.OrganizationID,
		ProjectID:      a.ProjectID,
		CreatedDate:    a.CreatedAt,
		DaysOpen:       daysOpen(a.CreatedAt, now),
		Metadata: map[string]any{
			"file_name":      a.FileName,
			"version_number": a.VersionNumber,
		},
	}}
}

// ShipmentActions evaluates the shipment predicates against one shipment
func ShipmentActions(s *shipping.Shipment, now time.Time) []ActionItem {
	var items []ActionItem

	if s.MissingTracking(now) {
		items = append(items, ActionItem{
			Type:           ActionMissingTracking,
			Priority:       PriorityNormal,
			RecordID:       s.ID,
			Title:          "Shipment missing tracking number",
			Description:    fmt.Sprintf("Shipment is %s with no tracking number recorded", s.Status),
			OrganizationID: s.OrganizationID,
			ProjectID:      s.ProjectID,
			CreatedDate:    s.CreatedAt,
			DaysOpen:       daysOpen(s.CreatedAt, now),
			Metadata: map[string]any{
				"status": s.Status.String(),
			},
		})
	}

	switch {
	case s.DeliveryOverdue(now):
		items = append(items, ActionItem{
			Type:           ActionShipmentOverdue,
			Priority:       PriorityUrgent,
			RecordID:       s.ID,
			Title:          "Shipment past expected delivery",
			Description:    fmt.Sprintf("Expected %s, still %s", s.ExpectedDeliveryDate.Format("2006-01-02"), s.Status),
			OrganizationID: s.OrganizationID,
			ProjectID:      s.ProjectID,
			CreatedDate:    s.CreatedAt,
			DueDate:        s.ExpectedDeliveryDate,
			DaysOpen:       daysOpen(s.CreatedAt, now),
			Metadata: map[string]any{
				"status":          s.Status.String(),
				"tracking_number": s.TrackingNumber,
			},
		})
	case s.DeliveryAtRisk(now, EtaRiskWindow):
		items = append(items, ActionItem{
			Type:           ActionShipmentEtaRisk,
			Priority:       PriorityNormal,
			RecordID:       s.ID,
			Title:          "Shipment delivery due imminently",
			Description:    fmt.Sprintf("Expected %s, currently %s", s.ExpectedDeliveryDate.Format("2006-01-02"), s.Status),
			OrganizationID: s.OrganizationID,
			ProjectID:      s.ProjectID,
			CreatedDate:    s.CreatedAt,
			DueDate:        s.ExpectedDeliveryDate,
			DaysOpen:       daysOpen(s.CreatedAt, now),
			Metadata: map[string]any{
				"status":          s.Status.String(),
				"tracking_number": s.TrackingNumber,
			},
		})
	}

	return items
}

// Snapshot is one consistent read of the entities contributing to the queue.
// Callers load it inside a single transaction so priority fields cannot shift
// mid-scan.
type Snapshot struct {
	Invoices  []billing.Invoice
	Proofs    []proofing.FileAsset
	Shipments []shipping.Shipment
}

// Build produces the ranked action queue from a snapshot. It is side-effect
// free and holds no state between calls.
func Build(snap Snapshot, now time.Time) []ActionItem {
	items := make([]ActionItem, 0)
	for i := range snap.Invoices {
		items = append(items, InvoiceActions(&snap.Invoices[i], now)...)
	}
	for i := range snap.Proofs {
		items = append(items, ProofActions(&snap.Proofs[i], now)...)
	}
	for i := range snap.Shipments {
		items = append(items, ShipmentActions(&snap.Shipments[i], now)...)
	}
	Sort(items)
	return items
}
