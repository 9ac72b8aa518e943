package authz

import (
	"github.com/packops/backend/internal/domain/identity"
	"github.com/packops/backend/internal/domain/proofing"
	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Operation is what the caller wants to do with a record
type Operation string

const (
	OpRead         Operation = "read"
	OpCreate       Operation = "create"
	OpUpdate       Operation = "update"
	OpDelete       Operation = "delete"
	OpInsertEvent  Operation = "insert_event"  // Append to an audit table
	OpCorrect      Operation = "correct"       // Admin-only compensating correction
	OpApproveProof Operation = "approve_proof" // Customer approval carve-out
)

// IsWrite returns true for operations that mutate state
func (o Operation) IsWrite() bool {
	return o != OpRead
}

// EntityKind identifies the record type a policy decision is about
type EntityKind string

const (
	KindOrganization  EntityKind = "organization"
	KindPrincipal     EntityKind = "principal"
	KindProject       EntityKind = "project"
	KindInvoice       EntityKind = "invoice"
	KindInvoiceEvent  EntityKind = "invoice_event"
	KindFileAsset     EntityKind = "file_asset"
	KindApprovalEvent EntityKind = "approval_event"
	KindShipment      EntityKind = "shipment"
	KindShipmentEvent EntityKind = "shipment_event"
)

// AppendOnly returns true for audit tables that never accept ordinary writes
func (k EntityKind) AppendOnly() bool {
	return k == KindInvoiceEvent || k == KindApprovalEvent || k == KindShipmentEvent
}

// ApprovalChange describes a requested approval-status transition on a proof
type ApprovalChange struct {
	From   proofing.ApprovalStatus
	To     proofing.ApprovalStatus
	Reason string
}

// RecordRef carries the attributes of the record a decision is about. Only
// the fields relevant to the entity kind are set.
type RecordRef struct {
	Kind           EntityKind
	OrganizationID uuid.UUID
	InvoiceDraft   bool                // Invoice only: true while status is draft
	FileType       proofing.FileType   // FileAsset only
	Approval       *ApprovalChange     // OpApproveProof only
}

// Evaluator decides, per operation and per record, whether a principal may
// proceed. Rules are evaluated in a fixed order and the first match wins;
// anything unmatched is denied. Failures never reveal whether the record
// exists.
type Evaluator struct {
	rules []rule
}

type rule struct {
	name string
	eval func(p identity.PrincipalContext, op Operation, rec RecordRef) (allow bool, matched bool, err error)
}

// NewEvaluator builds the evaluator with the fixed rule table
func NewEvaluator() *Evaluator {
	return &Evaluator{rules: ruleTable()}
}

// Evaluate authorizes the operation. A nil return means allow; otherwise the
// returned error is one of Unauthenticated, InvalidRole or Forbidden.
func (e *Evaluator) Evaluate(p identity.PrincipalContext, op Operation, rec RecordRef) error {
	_, err := e.Explain(p, op, rec)
	return err
}

// Explain runs the rule table and also names the rule that decided, which
// keeps the precedence order auditable in tests and logs.
func (e *Evaluator) Explain(p identity.PrincipalContext, op Operation, rec RecordRef) (string, error) {
	for _, r := range e.rules {
		allow, matched, err := r.eval(p, op, rec)
		if !matched {
			continue
		}
		if err != nil {
			return r.name, err
		}
		if allow {
			return r.name, nil
		}
		return r.name, shared.ErrForbidden
	}
	return "default_deny", shared.ErrForbidden
}

// ruleTable returns the ordered policy rules. The order is part of the
// contract: earlier rules shadow later ones.
func ruleTable() []rule {
	return []rule{
		{name: "unauthenticated", eval: unauthenticatedRule},
		{name: "invalid_role", eval: invalidRoleRule},
		{name: "system", eval: systemRule},
		{name: "admin", eval: adminRule},
		{name: "internal", eval: internalRule},
		{name: "customer_read", eval: customerReadRule},
		{name: "customer_proof_approval", eval: customerProofApprovalRule},
		{name: "append_only_insert", eval: appendOnlyInsertRule},
	}
}

// unauthenticatedRule denies requests with no resolved principal. Absence of
// a mapping never falls through to an empty-tenant result.
func unauthenticatedRule(p identity.PrincipalContext, _ Operation, _ RecordRef) (bool, bool, error) {
	if p.Role == identity.RoleSystem {
		return false, false, nil
	}
	if p.PrincipalID == uuid.Nil || p.OrganizationID == uuid.Nil || !p.Role.IsValid() {
		return false, true, shared.ErrUnauthenticated
	}
	return false, false, nil
}

// invalidRoleRule rejects role/organization-kind combinations with no defined
// semantics before any access rule can apply.
func invalidRoleRule(p identity.PrincipalContext, _ Operation, _ RecordRef) (bool, bool, error) {
	if p.Role == identity.RoleSystem {
		return false, false, nil
	}
	if err := identity.ValidateRoleForKind(p.Role, p.OrgKind); err != nil {
		return false, true, shared.ErrInvalidRole
	}
	return false, false, nil
}

// systemRule scopes the automation principal: it may read, append audit
// events, and update invoices and shipments. Which transitions are
// system-eligible is enforced by the owning state machines' callers.
func systemRule(p identity.PrincipalContext, op Operation, rec RecordRef) (bool, bool, error) {
	if p.Role != identity.RoleSystem {
		return false, false, nil
	}
	switch op {
	case OpRead, OpInsertEvent:
		return true, true, nil
	case OpUpdate:
		if rec.Kind == KindInvoice || rec.Kind == KindShipment {
			return true, true, nil
		}
	}
	return false, true, nil
}

// adminRule: always read; ordinary writes everywhere except append-only
// tables, which require the distinct correction operation. Event inserts fall
// through to the append-only rule shared with staff.
func adminRule(p identity.PrincipalContext, op Operation, rec RecordRef) (bool, bool, error) {
	if p.Role != identity.RoleAdmin {
		return false, false, nil
	}
	switch op {
	case OpRead:
		return true, true, nil
	case OpCorrect:
		return true, true, nil
	case OpInsertEvent:
		return false, false, nil // decided by append_only_insert
	default:
		if rec.Kind.AppendOnly() {
			return false, true, nil
		}
		return true, true, nil
	}
}

// internalRule: staff of the internal organization read everything and write
// operational entities. Corrections stay admin-only.
func internalRule(p identity.PrincipalContext, op Operation, rec RecordRef) (bool, bool, error) {
	if p.OrgKind != identity.OrgKindInternal || p.Role != identity.RoleStaff {
		return false, false, nil
	}
	switch op {
	case OpRead:
		return true, true, nil
	case OpCorrect:
		return false, true, nil
	case OpInsertEvent:
		return false, false, nil // decided by append_only_insert
	case OpApproveProof:
		// Staff may move proofs through the internal flow (e.g. finalize)
		return true, true, nil
	default:
		if rec.Kind.AppendOnly() {
			return false, true, nil
		}
		return true, true, nil
	}
}

// customerReadRule: customers read only their own organization's records, and
// draft invoices stay invisible. The same rule backs list, single fetch and
// count paths so no endpoint leaks a different answer.
func customerReadRule(p identity.PrincipalContext, op Operation, rec RecordRef) (bool, bool, error) {
	if p.OrgKind != identity.OrgKindCustomer || op != OpRead {
		return false, false, nil
	}
	if rec.OrganizationID != p.OrganizationID {
		return false, true, nil
	}
	if rec.Kind == KindInvoice && rec.InvoiceDraft {
		return false, true, nil
	}
	return true, true, nil
}

// customerProofApprovalRule is the single customer write carve-out: updating
// approval status on a proof of their own organization, pending to approved
// or pending to rejected with a reason.
func customerProofApprovalRule(p identity.PrincipalContext, op Operation, rec RecordRef) (bool, bool, error) {
	if p.OrgKind != identity.OrgKindCustomer || op != OpApproveProof {
		return false, false, nil
	}
	if rec.Kind != KindFileAsset || rec.OrganizationID != p.OrganizationID {
		return false, true, nil
	}
	if rec.FileType != proofing.FileTypeProof {
		return false, true, nil
	}
	ch := rec.Approval
	if ch == nil || ch.From != proofing.ApprovalPending {
		return false, true, nil
	}
	switch ch.To {
	case proofing.ApprovalApproved:
		return true, true, nil
	case proofing.ApprovalRejected:
		if ch.Reason == "" {
			return false, true, shared.NewDomainError("VALIDATION_ERROR", "Rejection reason is required")
		}
		return true, true, nil
	}
	return false, true, nil
}

// appendOnlyInsertRule: audit tables accept inserts from staff, admins and
// the system principal. Nothing updates or deletes them through this path.
func appendOnlyInsertRule(p identity.PrincipalContext, op Operation, rec RecordRef) (bool, bool, error) {
	if op != OpInsertEvent || !rec.Kind.AppendOnly() {
		return false, false, nil
	}
	switch p.Role {
	case identity.RoleAdmin, identity.RoleStaff, identity.RoleSystem:
		return true, true, nil
	}
	return false, true, nil
}
