package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/packops/backend/internal/domain/authz"
	"github.com/packops/backend/internal/domain/billing"
	"github.com/packops/backend/internal/domain/identity"
	"github.com/packops/backend/internal/domain/project"
	"github.com/packops/backend/internal/domain/shared"
	"github.com/packops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, orgID uuid.UUID, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, orgID, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindDueForSweep(ctx context.Context, now time.Time) ([]billing.Invoice, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, inv *billing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithEvent(ctx context.Context, inv *billing.Invoice, event *billing.InvoiceEvent) error {
	args := m.Called(ctx, inv, event)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter billing.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter billing.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockInvoiceEventRepository is a mock implementation of billing.InvoiceEventRepository
type MockInvoiceEventRepository struct {
	mock.Mock
}

func (m *MockInvoiceEventRepository) Append(ctx context.Context, event *billing.InvoiceEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockInvoiceEventRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.InvoiceEvent, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.InvoiceEvent), args.Error(1)
}

func (m *MockInvoiceEventRepository) FindByInvoiceForOrg(ctx context.Context, orgID, invoiceID uuid.UUID) ([]billing.InvoiceEvent, error) {
	args := m.Called(ctx, orgID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.InvoiceEvent), args.Error(1)
}

// MockProjectRepository is a mock implementation of project.Repository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*project.Project, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) FindAll(ctx context.Context, filter shared.Filter) ([]project.Project, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]project.Project), args.Error(1)
}

func (m *MockProjectRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]project.Project, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]project.Project), args.Error(1)
}

func (m *MockProjectRepository) Save(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProjectRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func createInvoiceService(invoiceRepo *MockInvoiceRepository, eventRepo *MockInvoiceEventRepository, projectRepo *MockProjectRepository) *InvoiceService {
	return NewInvoiceService(invoiceRepo, eventRepo, projectRepo, authz.NewEvaluator(), zap.NewNop())
}

func staffCaller() identity.PrincipalContext {
	return identity.PrincipalContext{
		PrincipalID:    uuid.New(),
		OrganizationID: uuid.New(),
		Role:           identity.RoleStaff,
		OrgKind:        identity.OrgKindInternal,
	}
}

func adminCaller() identity.PrincipalContext {
	c := staffCaller()
	c.Role = identity.RoleAdmin
	return c
}

func customerCaller(orgID uuid.UUID) identity.PrincipalContext {
	return identity.PrincipalContext{
		PrincipalID:    uuid.New(),
		OrganizationID: orgID,
		Role:           identity.RoleCustomer,
		OrgKind:        identity.OrgKindCustomer,
	}
}

func createTestProject(orgID uuid.UUID) *project.Project {
	p, err := project.NewProject(orgID, uuid.New(), "Spring packaging run", "")
	if err != nil {
		panic(err)
	}
	return p
}

func createSentInvoice(orgID uuid.UUID, total int64, dueDate *time.Time) *billing.Invoice {
	inv, err := billing.NewInvoice(
		orgID, uuid.New(), uuid.New(),
		"INV-1001",
		valueobject.NewMoneyUSD(total), valueobject.NewMoneyUSD(0),
		false, nil, dueDate,
	)
	if err != nil {
		panic(err)
	}
	if _, err := inv.Send(time.Now().Add(-time.Hour)); err != nil {
		panic(err)
	}
	return inv
}

func TestInvoiceService_Create_Success(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	caller := staffCaller()
	orgID := uuid.New()
	proj := createTestProject(orgID)

	ctx := context.Background()
	projectRepo.On("FindByIDForOrg", ctx, orgID, proj.ID).Return(proj, nil)
	invoiceRepo.On("FindByNumber", ctx, orgID, "INV-2024-001").Return(nil, shared.ErrNotFound)
	invoiceRepo.On("SaveWithEvent", ctx, mock.AnythingOfType("*billing.Invoice"), mock.AnythingOfType("*billing.InvoiceEvent")).Return(nil)

	info, err := service.Create(ctx, caller, CreateInvoiceInput{
		OrganizationID: orgID,
		ProjectID:      proj.ID,
		InvoiceNumber:  "INV-2024-001",
		Subtotal:       10000,
		Tax:            800,
	})

	assert.NoError(t, err)
	assert.NotNil(t, info)
	assert.Equal(t, "draft", info.Status)
	assert.Equal(t, int64(10800), info.Total)
	assert.Equal(t, int64(10800), info.BalanceDue)
	assert.False(t, info.DepositRequired)
	invoiceRepo.AssertExpectations(t)
	projectRepo.AssertExpectations(t)
}

func TestInvoiceService_Create_TerminalProject(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	caller := staffCaller()
	orgID := uuid.New()
	proj := createTestProject(orgID)
	assert.NoError(t, proj.Complete())

	ctx := context.Background()
	projectRepo.On("FindByIDForOrg", ctx, orgID, proj.ID).Return(proj, nil)

	_, err := service.Create(ctx, caller, CreateInvoiceInput{
		OrganizationID: orgID,
		ProjectID:      proj.ID,
		InvoiceNumber:  "INV-2024-002",
		Subtotal:       5000,
	})

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	invoiceRepo.AssertNotCalled(t, "SaveWithEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_Create_DuplicateNumber(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	caller := staffCaller()
	orgID := uuid.New()
	proj := createTestProject(orgID)
	existing := createSentInvoice(orgID, 1000, nil)

	ctx := context.Background()
	projectRepo.On("FindByIDForOrg", ctx, orgID, proj.ID).Return(proj, nil)
	invoiceRepo.On("FindByNumber", ctx, orgID, "INV-1001").Return(existing, nil)

	_, err := service.Create(ctx, caller, CreateInvoiceInput{
		OrganizationID: orgID,
		ProjectID:      proj.ID,
		InvoiceNumber:  "INV-1001",
		Subtotal:       5000,
	})

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
}

func TestInvoiceService_Create_CustomerForbidden(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	orgID := uuid.New()
	caller := customerCaller(orgID)

	_, err := service.Create(context.Background(), caller, CreateInvoiceInput{
		OrganizationID: orgID,
		ProjectID:      uuid.New(),
		InvoiceNumber:  "INV-2024-003",
		Subtotal:       5000,
	})

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	projectRepo.AssertNotCalled(t, "FindByIDForOrg", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_Send_Success(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	caller := staffCaller()
	orgID := uuid.New()
	inv, err := billing.NewInvoice(orgID, uuid.New(), caller.PrincipalID, "INV-2024-010",
		valueobject.NewMoneyUSD(10000), valueobject.NewMoneyUSD(0), false, nil, nil)
	assert.NoError(t, err)

	ctx := context.Background()
	invoiceRepo.On("FindByID", ctx, inv.ID).Return(inv, nil)
	invoiceRepo.On("SaveWithEvent", ctx, inv, mock.AnythingOfType("*billing.InvoiceEvent")).Return(nil)

	info, err := service.Send(ctx, caller, inv.ID)

	assert.NoError(t, err)
	assert.Equal(t, "sent", info.Status)
	assert.NotNil(t, info.SentAt)
	invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_Send_AlreadySentIsNoOp(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	caller := staffCaller()
	inv := createSentInvoice(uuid.New(), 10000, nil)

	ctx := context.Background()
	invoiceRepo.On("FindByID", ctx, inv.ID).Return(inv, nil)

	info, err := service.Send(ctx, caller, inv.ID)

	assert.NoError(t, err)
	assert.Equal(t, "sent", info.Status)
	invoiceRepo.AssertNotCalled(t, "SaveWithEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_RecordPayment_SettlesInvoice(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	caller := staffCaller()
	inv := createSentInvoice(uuid.New(), 10000, nil)

	ctx := context.Background()
	invoiceRepo.On("FindByID", ctx, inv.ID).Return(inv, nil)
	invoiceRepo.On("SaveWithEvent", ctx, inv, mock.AnythingOfType("*billing.InvoiceEvent")).Return(nil)

	info, err := service.RecordPayment(ctx, caller, RecordPaymentInput{
		InvoiceID: inv.ID,
		Amount:    10000,
		Reference: "wire-845",
	})

	assert.NoError(t, err)
	assert.Equal(t, "paid", info.Status)
	assert.Equal(t, int64(0), info.BalanceDue)
	assert.NotNil(t, info.PaidAt)
	invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_RecordPayment_Overpayment(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	caller := staffCaller()
	inv := createSentInvoice(uuid.New(), 10000, nil)

	ctx := context.Background()
	invoiceRepo.On("FindByID", ctx, inv.ID).Return(inv, nil)

	_, err := service.RecordPayment(ctx, caller, RecordPaymentInput{
		InvoiceID: inv.ID,
		Amount:    20000,
	})

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	invoiceRepo.AssertNotCalled(t, "SaveWithEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_Cancel_AlreadyCancelledIsNoOp(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	caller := staffCaller()
	inv := createSentInvoice(uuid.New(), 10000, nil)
	changed, err := inv.Cancel("order withdrawn", time.Now())
	assert.True(t, changed)
	assert.NoError(t, err)

	ctx := context.Background()
	invoiceRepo.On("FindByID", ctx, inv.ID).Return(inv, nil)

	info, err := service.Cancel(ctx, caller, CancelInvoiceInput{InvoiceID: inv.ID, Reason: "again"})

	assert.NoError(t, err)
	assert.Equal(t, "cancelled", info.Status)
	invoiceRepo.AssertNotCalled(t, "SaveWithEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_Correct_StaffForbidden(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	caller := staffCaller()
	inv := createSentInvoice(uuid.New(), 10000, nil)

	ctx := context.Background()
	invoiceRepo.On("FindByID", ctx, inv.ID).Return(inv, nil)

	err := service.Correct(ctx, caller, CorrectInvoiceInput{InvoiceID: inv.ID, Reason: "rebooked"})

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	eventRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestInvoiceService_Correct_AdminAppendsEvent(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	caller := adminCaller()
	inv := createSentInvoice(uuid.New(), 10000, nil)

	ctx := context.Background()
	invoiceRepo.On("FindByID", ctx, inv.ID).Return(inv, nil)
	eventRepo.On("Append", ctx, mock.MatchedBy(func(e *billing.InvoiceEvent) bool {
		return e.InvoiceID == inv.ID && e.Type == billing.AuditCorrected && e.Data["reason"] == "payment posted to wrong invoice"
	})).Return(nil)

	err := service.Correct(ctx, caller, CorrectInvoiceInput{
		InvoiceID: inv.ID,
		Reason:    "payment posted to wrong invoice",
		Data:      map[string]any{"correct_invoice": "INV-1002"},
	})

	assert.NoError(t, err)
	eventRepo.AssertExpectations(t)
}

func TestInvoiceService_Get_CustomerCannotSeeDraft(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	orgID := uuid.New()
	caller := customerCaller(orgID)
	inv, err := billing.NewInvoice(orgID, uuid.New(), uuid.New(), "INV-2024-020",
		valueobject.NewMoneyUSD(5000), valueobject.NewMoneyUSD(0), false, nil, nil)
	assert.NoError(t, err)

	ctx := context.Background()
	invoiceRepo.On("FindByIDForOrg", ctx, orgID, inv.ID).Return(inv, nil)

	_, err = service.Get(ctx, caller, inv.ID)

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	// A hidden draft reads the same as a missing invoice
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	invoiceRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestInvoiceService_Get_CustomerForeignInvoiceLooksAbsent(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	orgID := uuid.New()
	caller := customerCaller(orgID)
	foreign := createSentInvoice(uuid.New(), 10000, nil)
	missingID := uuid.New()

	ctx := context.Background()
	invoiceRepo.On("FindByIDForOrg", ctx, orgID, foreign.ID).Return(nil, shared.ErrNotFound)
	invoiceRepo.On("FindByIDForOrg", ctx, orgID, missingID).Return(nil, shared.ErrNotFound)

	_, foreignErr := service.Get(ctx, caller, foreign.ID)
	_, missingErr := service.Get(ctx, caller, missingID)

	// Probing another organization's invoice must be indistinguishable from
	// probing an ID that does not exist
	var foreignDomainErr, missingDomainErr *shared.DomainError
	assert.True(t, errors.As(foreignErr, &foreignDomainErr))
	assert.True(t, errors.As(missingErr, &missingDomainErr))
	assert.Equal(t, "NOT_FOUND", foreignDomainErr.Code)
	assert.Equal(t, foreignDomainErr.Code, missingDomainErr.Code)
	invoiceRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestInvoiceService_GetEvents_CustomerReadsOwnTrailScoped(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	orgID := uuid.New()
	caller := customerCaller(orgID)
	inv := createSentInvoice(orgID, 10000, nil)
	event := billing.NewInvoiceEvent(inv, billing.AuditInvoiceSent, map[string]any{}, uuid.New())

	ctx := context.Background()
	invoiceRepo.On("FindByIDForOrg", ctx, orgID, inv.ID).Return(inv, nil)
	eventRepo.On("FindByInvoiceForOrg", ctx, orgID, inv.ID).Return([]billing.InvoiceEvent{*event}, nil)

	events, err := service.GetEvents(ctx, caller, inv.ID)

	assert.NoError(t, err)
	assert.Len(t, events, 1)
	eventRepo.AssertNotCalled(t, "FindByInvoice", mock.Anything, mock.Anything)
}

func TestInvoiceService_GetEvents_CustomerCannotSeeDraftTrail(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	orgID := uuid.New()
	caller := customerCaller(orgID)
	draft, err := billing.NewInvoice(orgID, uuid.New(), uuid.New(), "INV-2024-021",
		valueobject.NewMoneyUSD(5000), valueobject.NewMoneyUSD(0), false, nil, nil)
	assert.NoError(t, err)

	ctx := context.Background()
	invoiceRepo.On("FindByIDForOrg", ctx, orgID, draft.ID).Return(draft, nil)

	_, err = service.GetEvents(ctx, caller, draft.ID)

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	// The audit trail of a draft is exactly as invisible as the draft
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	eventRepo.AssertNotCalled(t, "FindByInvoice", mock.Anything, mock.Anything)
	eventRepo.AssertNotCalled(t, "FindByInvoiceForOrg", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_List_CustomerScopedWithoutDrafts(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	orgID := uuid.New()
	caller := customerCaller(orgID)
	inv := createSentInvoice(orgID, 10000, nil)

	ctx := context.Background()
	invoiceRepo.On("FindAllForOrg", ctx, orgID, mock.MatchedBy(func(f billing.InvoiceFilter) bool {
		return f.ExcludeDrafts
	})).Return([]billing.Invoice{*inv}, nil)

	infos, err := service.List(ctx, caller, billing.InvoiceFilter{})

	assert.NoError(t, err)
	assert.Len(t, infos, 1)
	invoiceRepo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

func TestInvoiceService_RunOverdueSweep(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	now := time.Now()
	pastDue := now.Add(-48 * time.Hour)

	sweepable := createSentInvoice(uuid.New(), 10000, &pastDue)
	raceLoser := createSentInvoice(uuid.New(), 20000, &pastDue)
	alreadyOverdue := createSentInvoice(uuid.New(), 5000, &pastDue)
	if _, err := alreadyOverdue.MarkOverdue(now.Add(-time.Hour)); err != nil {
		t.Fatalf("failed to prepare overdue invoice: %v", err)
	}

	candidates := []billing.Invoice{*sweepable, *raceLoser, *alreadyOverdue}

	ctx := context.Background()
	invoiceRepo.On("FindDueForSweep", ctx, now).Return(candidates, nil)
	invoiceRepo.On("SaveWithEvent", ctx, &candidates[0], mock.MatchedBy(func(e *billing.InvoiceEvent) bool {
		return e.Type == billing.AuditMarkedOverdue && e.TriggeredBy == nil
	})).Return(nil)
	invoiceRepo.On("SaveWithEvent", ctx, &candidates[1], mock.Anything).Return(shared.ErrConcurrencyConflict)

	result, err := service.RunOverdueSweep(ctx, identity.SystemPrincipal(), now)

	assert.NoError(t, err)
	assert.Equal(t, 3, result.Examined)
	assert.Equal(t, 1, result.Marked)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, billing.InvoiceStatusOverdue, candidates[0].Status)
	invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_RunOverdueSweep_CustomerForbidden(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	eventRepo := new(MockInvoiceEventRepository)
	projectRepo := new(MockProjectRepository)
	service := createInvoiceService(invoiceRepo, eventRepo, projectRepo)

	caller := customerCaller(uuid.New())

	_, err := service.RunOverdueSweep(context.Background(), caller, time.Now())

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	invoiceRepo.AssertNotCalled(t, "FindDueForSweep", mock.Anything, mock.Anything)
}
