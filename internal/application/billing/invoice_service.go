package billing

import (
	"context"
	"time"

	"github.com/packops/backend/internal/domain/authz"
	"github.com/packops/backend/internal/domain/billing"
	"github.com/packops/backend/internal/domain/identity"
	"github.com/packops/backend/internal/domain/project"
	"github.com/packops/backend/internal/domain/shared"
	"github.com/packops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService drives the invoice state machine. Every transition appends
// its audit event in the same transaction as the state change, so the audit
// trail never diverges from the aggregate.
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	eventRepo   billing.InvoiceEventRepository
	projectRepo project.Repository
	evaluator   *authz.Evaluator
	logger      *zap.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	eventRepo billing.InvoiceEventRepository,
	projectRepo project.Repository,
	evaluator *authz.Evaluator,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		eventRepo:   eventRepo,
		projectRepo: projectRepo,
		evaluator:   evaluator,
		logger:      logger,
	}
}

// Create creates a draft invoice on a project
func (s *InvoiceService) Create(ctx context.Context, caller identity.PrincipalContext, input CreateInvoiceInput) (*InvoiceInfo, error) {
	if err := s.evaluator.Evaluate(caller, authz.OpCreate, authz.RecordRef{
		Kind:           authz.KindInvoice,
		OrganizationID: input.OrganizationID,
	}); err != nil {
		return nil, err
	}

	proj, err := s.projectRepo.FindByIDForOrg(ctx, input.OrganizationID, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if proj.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot invoice a completed or cancelled project")
	}

	if existing, err := s.invoiceRepo.FindByNumber(ctx, input.OrganizationID, input.InvoiceNumber); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Invoice number is already in use")
	}

	currency := input.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	var depositAmount *valueobject.Money
	if input.DepositAmount != nil {
		d := valueobject.NewMoney(*input.DepositAmount, currency)
		depositAmount = &d
	}

	inv, err := billing.NewInvoice(
		input.OrganizationID, input.ProjectID, caller.PrincipalID,
		input.InvoiceNumber,
		valueobject.NewMoney(input.Subtotal, currency),
		valueobject.NewMoney(input.Tax, currency),
		input.DepositAmount != nil,
		depositAmount,
		input.DueDate,
	)
	if err != nil {
		return nil, err
	}

	event := billing.NewInvoiceEvent(inv, billing.AuditInvoiceCreated, map[string]any{
		"invoice_number": inv.InvoiceNumber,
		"total":          inv.Total.Amount(),
		"currency":       inv.Total.Currency(),
	}, caller.PrincipalID)

	if err := s.invoiceRepo.SaveWithEvent(ctx, inv, event); err != nil {
		s.logger.Error("Failed to save invoice", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("organization_id", inv.OrganizationID.String()),
		zap.Int64("total", inv.Total.Amount()))

	return toInvoiceInfo(inv), nil
}

// Send issues a draft invoice. Sending an already-sent invoice is a no-op and
// appends no event.
func (s *InvoiceService) Send(ctx context.Context, caller identity.PrincipalContext, invoiceID uuid.UUID) (*InvoiceInfo, error) {
	inv, err := s.loadForUpdate(ctx, caller, invoiceID)
	if err != nil {
		return nil, err
	}

	changed, err := inv.Send(time.Now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return toInvoiceInfo(inv), nil
	}

	event := billing.NewInvoiceEvent(inv, billing.AuditInvoiceSent, map[string]any{
		"due_date": inv.DueDate,
	}, caller.PrincipalID)
	if err := s.invoiceRepo.SaveWithEvent(ctx, inv, event); err != nil {
		return nil, err
	}

	s.logger.Info("Invoice sent",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber))

	return toInvoiceInfo(inv), nil
}

// RecordPayment applies an externally reported payment
func (s *InvoiceService) RecordPayment(ctx context.Context, caller identity.PrincipalContext, input RecordPaymentInput) (*InvoiceInfo, error) {
	inv, err := s.loadForUpdate(ctx, caller, input.InvoiceID)
	if err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = inv.Total.Currency()
	}
	if err := inv.RecordPayment(valueobject.NewMoney(input.Amount, currency), time.Now()); err != nil {
		return nil, err
	}

	event := billing.NewInvoiceEvent(inv, billing.AuditPaymentReceived, map[string]any{
		"amount":    input.Amount,
		"currency":  currency,
		"reference": input.Reference,
		"balance":   inv.BalanceDue().Amount(),
	}, caller.PrincipalID)
	if err := s.invoiceRepo.SaveWithEvent(ctx, inv, event); err != nil {
		return nil, err
	}

	s.logger.Info("Payment recorded",
		zap.String("invoice_id", inv.ID.String()),
		zap.Int64("amount", input.Amount),
		zap.String("status", inv.Status.String()))

	return toInvoiceInfo(inv), nil
}

// MarkDepositPaid records the required deposit as paid. Repeated calls are a
// no-op once the deposit is recorded.
func (s *InvoiceService) MarkDepositPaid(ctx context.Context, caller identity.PrincipalContext, invoiceID uuid.UUID) (*InvoiceInfo, error) {
	inv, err := s.loadForUpdate(ctx, caller, invoiceID)
	if err != nil {
		return nil, err
	}

	alreadyPaid := inv.DepositPaid
	if err := inv.MarkDepositPaid(time.Now()); err != nil {
		return nil, err
	}
	if alreadyPaid {
		return toInvoiceInfo(inv), nil
	}

	event := billing.NewInvoiceEvent(inv, billing.AuditDepositPaid, map[string]any{
		"deposit_amount": inv.DepositAmount.Amount(),
		"currency":       inv.DepositAmount.Currency(),
	}, caller.PrincipalID)
	if err := s.invoiceRepo.SaveWithEvent(ctx, inv, event); err != nil {
		return nil, err
	}

	s.logger.Info("Deposit recorded",
		zap.String("invoice_id", inv.ID.String()),
		zap.Int64("deposit_amount", inv.DepositAmount.Amount()))

	return toInvoiceInfo(inv), nil
}

// Cancel cancels a draft or sent invoice
func (s *InvoiceService) Cancel(ctx context.Context, caller identity.PrincipalContext, input CancelInvoiceInput) (*InvoiceInfo, error) {
	inv, err := s.loadForUpdate(ctx, caller, input.InvoiceID)
	if err != nil {
		return nil, err
	}

	changed, err := inv.Cancel(input.Reason, time.Now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return toInvoiceInfo(inv), nil
	}

	event := billing.NewInvoiceEvent(inv, billing.AuditInvoiceVoided, map[string]any{
		"reason": input.Reason,
	}, caller.PrincipalID)
	if err := s.invoiceRepo.SaveWithEvent(ctx, inv, event); err != nil {
		return nil, err
	}

	s.logger.Info("Invoice cancelled",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("reason", input.Reason))

	return toInvoiceInfo(inv), nil
}

// Correct appends an admin compensating correction to the audit trail. It
// never rewrites existing rows.
func (s *InvoiceService) Correct(ctx context.Context, caller identity.PrincipalContext, input CorrectInvoiceInput) error {
	inv, err := s.invoiceRepo.FindByID(ctx, input.InvoiceID)
	if err != nil {
		return err
	}
	if err := s.evaluator.Evaluate(caller, authz.OpCorrect, authz.RecordRef{
		Kind:           authz.KindInvoiceEvent,
		OrganizationID: inv.OrganizationID,
	}); err != nil {
		return err
	}
	if input.Reason == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Correction reason is required")
	}

	data := map[string]any{"reason": input.Reason}
	for k, v := range input.Data {
		data[k] = v
	}
	event := billing.NewInvoiceEvent(inv, billing.AuditCorrected, data, caller.PrincipalID)
	if err := s.eventRepo.Append(ctx, event); err != nil {
		return err
	}

	s.logger.Info("Invoice correction appended",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("principal_id", caller.PrincipalID.String()))
	return nil
}

// Get returns one invoice visible to the caller
func (s *InvoiceService) Get(ctx context.Context, caller identity.PrincipalContext, invoiceID uuid.UUID) (*InvoiceInfo, error) {
	inv, err := s.loadForRead(ctx, caller, invoiceID)
	if err != nil {
		return nil, err
	}
	return toInvoiceInfo(inv), nil
}

// List returns invoices visible to the caller. Customers are scoped to their
// own organization and never see drafts.
func (s *InvoiceService) List(ctx context.Context, caller identity.PrincipalContext, filter billing.InvoiceFilter) ([]InvoiceInfo, error) {
	var (
		invoices []billing.Invoice
		err      error
	)
	if caller.IsInternal() || caller.IsSystem() {
		invoices, err = s.invoiceRepo.FindAll(ctx, filter)
	} else {
		filter.ExcludeDrafts = true
		invoices, err = s.invoiceRepo.FindAllForOrg(ctx, caller.OrganizationID, filter)
	}
	if err != nil {
		return nil, err
	}

	infos := make([]InvoiceInfo, 0, len(invoices))
	for i := range invoices {
		infos = append(infos, *toInvoiceInfo(&invoices[i]))
	}
	return infos, nil
}

// GetEvents returns the audit trail of one invoice. The trail is exactly as
// visible as the invoice itself, so a draft's events stay hidden from
// customers along with the draft.
func (s *InvoiceService) GetEvents(ctx context.Context, caller identity.PrincipalContext, invoiceID uuid.UUID) ([]InvoiceEventInfo, error) {
	if _, err := s.loadForRead(ctx, caller, invoiceID); err != nil {
		return nil, err
	}

	var (
		events []billing.InvoiceEvent
		err    error
	)
	if caller.IsInternal() || caller.IsSystem() {
		events, err = s.eventRepo.FindByInvoice(ctx, invoiceID)
	} else {
		events, err = s.eventRepo.FindByInvoiceForOrg(ctx, caller.OrganizationID, invoiceID)
	}
	if err != nil {
		return nil, err
	}
	infos := make([]InvoiceEventInfo, 0, len(events))
	for i := range events {
		e := &events[i]
		infos = append(infos, InvoiceEventInfo{
			ID:          e.ID,
			InvoiceID:   e.InvoiceID,
			EventType:   e.Type,
			Data:        e.Data,
			PrincipalID: e.TriggeredBy,
			CreatedAt:   e.OccurredAt,
		})
	}
	return infos, nil
}

// RunOverdueSweep marks sent invoices past due with an outstanding balance as
// overdue. Invoked by the scheduler under the system principal; already
// overdue invoices produce no duplicate events.
func (s *InvoiceService) RunOverdueSweep(ctx context.Context, caller identity.PrincipalContext, now time.Time) (*OverdueSweepResult, error) {
	if err := s.evaluator.Evaluate(caller, authz.OpUpdate, authz.RecordRef{Kind: authz.KindInvoice}); err != nil {
		return nil, err
	}

	candidates, err := s.invoiceRepo.FindDueForSweep(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &OverdueSweepResult{Examined: len(candidates)}
	for i := range candidates {
		inv := &candidates[i]
		changed, err := inv.MarkOverdue(now)
		if err != nil || !changed {
			continue
		}

		event := billing.NewSystemInvoiceEvent(inv, billing.AuditMarkedOverdue, map[string]any{
			"due_date": inv.DueDate,
			"balance":  inv.BalanceDue().Amount(),
		})
		if err := s.invoiceRepo.SaveWithEvent(ctx, inv, event); err != nil {
			// A lost optimistic-lock race means someone else advanced this
			// invoice; the next sweep re-evaluates it.
			s.logger.Warn("Failed to mark invoice overdue",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err))
			result.Failed++
			continue
		}
		result.Marked++
	}

	s.logger.Info("Overdue sweep finished",
		zap.Int("examined", result.Examined),
		zap.Int("marked", result.Marked),
		zap.Int("failed", result.Failed))

	return result, nil
}

// loadForRead fetches an invoice for the caller. Internal and system callers
// fetch unscoped; everyone else fetches through the org scope, and a record
// they are not allowed to see is reported absent, so the answer for a foreign
// invoice, a hidden draft and a missing ID is the same NOT_FOUND.
func (s *InvoiceService) loadForRead(ctx context.Context, caller identity.PrincipalContext, invoiceID uuid.UUID) (*billing.Invoice, error) {
	if caller.IsInternal() || caller.IsSystem() {
		inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
		if err != nil {
			return nil, err
		}
		if err := s.evaluator.Evaluate(caller, authz.OpRead, invoiceReadRef(inv)); err != nil {
			return nil, err
		}
		return inv, nil
	}

	if err := s.evaluator.Evaluate(caller, authz.OpRead, authz.RecordRef{
		Kind:           authz.KindInvoice,
		OrganizationID: caller.OrganizationID,
	}); err != nil {
		return nil, err
	}
	inv, err := s.invoiceRepo.FindByIDForOrg(ctx, caller.OrganizationID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Evaluate(caller, authz.OpRead, invoiceReadRef(inv)); err != nil {
		return nil, shared.ErrNotFound
	}
	return inv, nil
}

func invoiceReadRef(inv *billing.Invoice) authz.RecordRef {
	return authz.RecordRef{
		Kind:           authz.KindInvoice,
		OrganizationID: inv.OrganizationID,
		InvoiceDraft:   inv.IsDraft(),
	}
}

// loadForUpdate fetches an invoice and authorizes an update on it
func (s *InvoiceService) loadForUpdate(ctx context.Context, caller identity.PrincipalContext, invoiceID uuid.UUID) (*billing.Invoice, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Evaluate(caller, authz.OpUpdate, authz.RecordRef{
		Kind:           authz.KindInvoice,
		OrganizationID: inv.OrganizationID,
	}); err != nil {
		return nil, err
	}
	return inv, nil
}

func toInvoiceInfo(inv *billing.Invoice) *InvoiceInfo {
	info := &InvoiceInfo{
		ID:              inv.ID,
		OrganizationID:  inv.OrganizationID,
		ProjectID:       inv.ProjectID,
		InvoiceNumber:   inv.InvoiceNumber,
		Subtotal:        inv.Subtotal.Amount(),
		Tax:             inv.Tax.Amount(),
		Total:           inv.Total.Amount(),
		Paid:            inv.Paid.Amount(),
		BalanceDue:      inv.BalanceDue().Amount(),
		Currency:        inv.Total.Currency(),
		DepositRequired: inv.DepositRequired,
		DepositPaid:     inv.DepositPaid,
		Status:          inv.Status.String(),
		DueDate:         inv.DueDate,
		SentAt:          inv.SentAt,
		PaidAt:          inv.PaidAt,
		CancelledAt:     inv.CancelledAt,
		CancelReason:    inv.CancelReason,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
	if inv.DepositAmount != nil {
		amt := inv.DepositAmount.Amount()
		info.DepositAmount = &amt
	}
	return info
}
