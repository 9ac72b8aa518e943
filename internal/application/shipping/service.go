package shipping

import (
	"context"
	"strings"
	"time"

	"github.com/packops/backend/internal/domain/authz"
	"github.com/packops/backend/internal/domain/identity"
	"github.com/packops/backend/internal/domain/project"
	"github.com/packops/backend/internal/domain/shared"
	"github.com/packops/backend/internal/domain/shipping"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeliveryRiskWindow is how far ahead of the expected delivery date a
// shipment counts as at risk.
const DeliveryRiskWindow = 48 * time.Hour

// Service drives the shipment state machine
type Service struct {
	shipmentRepo shipping.ShipmentRepository
	eventRepo    shipping.ShipmentEventRepository
	projectRepo  project.Repository
	evaluator    *authz.Evaluator
	logger       *zap.Logger
}

// NewService creates a new shipping service
func NewService(
	shipmentRepo shipping.ShipmentRepository,
	eventRepo shipping.ShipmentEventRepository,
	projectRepo project.Repository,
	evaluator *authz.Evaluator,
	logger *zap.Logger,
) *Service {
	return &Service{
		shipmentRepo: shipmentRepo,
		eventRepo:    eventRepo,
		projectRepo:  projectRepo,
		evaluator:    evaluator,
		logger:       logger,
	}
}

// Create creates a pending shipment on a project
func (s *Service) Create(ctx context.Context, caller identity.PrincipalContext, input CreateShipmentInput) (*ShipmentInfo, error) {
	if err := s.evaluator.Evaluate(caller, authz.OpCreate, authz.RecordRef{
		Kind:           authz.KindShipment,
		OrganizationID: input.OrganizationID,
	}); err != nil {
		return nil, err
	}

	proj, err := s.projectRepo.FindByIDForOrg(ctx, input.OrganizationID, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if proj.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot ship for a completed or cancelled project")
	}

	sh, err := shipping.NewShipment(input.OrganizationID, input.ProjectID, caller.PrincipalID, input.Carrier, input.ExpectedDelivery)
	if err != nil {
		return nil, err
	}

	event := shipping.NewShipmentEvent(sh, shipping.AuditShipmentCreated, map[string]any{
		"carrier": sh.Carrier,
	}, caller.PrincipalID)
	if err := s.shipmentRepo.SaveWithEvent(ctx, sh, event); err != nil {
		s.logger.Error("Failed to save shipment", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Shipment created",
		zap.String("shipment_id", sh.ID.String()),
		zap.String("project_id", sh.ProjectID.String()))

	return toShipmentInfo(sh), nil
}

// Transition moves a shipment to a new state. Re-applying the current state
// is a no-op and appends no event.
func (s *Service) Transition(ctx context.Context, caller identity.PrincipalContext, input TransitionShipmentInput) (*ShipmentInfo, error) {
	sh, err := s.loadForUpdate(ctx, caller, input.ShipmentID)
	if err != nil {
		return nil, err
	}

	from := sh.Status
	next := shipping.ShipmentStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	changed, err := sh.TransitionTo(next, input.Reason, time.Now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return toShipmentInfo(sh), nil
	}

	data := map[string]any{
		"from": from.String(),
		"to":   sh.Status.String(),
	}
	if input.Reason != "" {
		data["reason"] = input.Reason
	}
	event := s.statusEvent(caller, sh, data)
	if err := s.shipmentRepo.SaveWithEvent(ctx, sh, event); err != nil {
		return nil, err
	}

	s.logger.Info("Shipment transitioned",
		zap.String("shipment_id", sh.ID.String()),
		zap.String("from", from.String()),
		zap.String("to", sh.Status.String()))

	return toShipmentInfo(sh), nil
}

// SetTracking records the carrier tracking number on a shipment
func (s *Service) SetTracking(ctx context.Context, caller identity.PrincipalContext, input SetTrackingInput) (*ShipmentInfo, error) {
	sh, err := s.loadForUpdate(ctx, caller, input.ShipmentID)
	if err != nil {
		return nil, err
	}

	if err := sh.SetTracking(input.Carrier, input.TrackingNumber, time.Now()); err != nil {
		return nil, err
	}

	event := shipping.NewShipmentEvent(sh, shipping.AuditTrackingSet, map[string]any{
		"carrier":         sh.Carrier,
		"tracking_number": sh.TrackingNumber,
	}, caller.PrincipalID)
	if err := s.shipmentRepo.SaveWithEvent(ctx, sh, event); err != nil {
		return nil, err
	}

	s.logger.Info("Tracking set",
		zap.String("shipment_id", sh.ID.String()),
		zap.String("tracking_number", sh.TrackingNumber))

	return toShipmentInfo(sh), nil
}

// Get returns one shipment visible to the caller
func (s *Service) Get(ctx context.Context, caller identity.PrincipalContext, shipmentID uuid.UUID) (*ShipmentInfo, error) {
	sh, err := s.loadForRead(ctx, caller, shipmentID)
	if err != nil {
		return nil, err
	}
	return toShipmentInfo(sh), nil
}

// List returns shipments visible to the caller
func (s *Service) List(ctx context.Context, caller identity.PrincipalContext, filter shipping.ShipmentFilter) ([]ShipmentInfo, error) {
	var (
		shipments []shipping.Shipment
		err       error
	)
	if caller.IsInternal() || caller.IsSystem() {
		shipments, err = s.shipmentRepo.FindAll(ctx, filter)
	} else {
		shipments, err = s.shipmentRepo.FindAllForOrg(ctx, caller.OrganizationID, filter)
	}
	if err != nil {
		return nil, err
	}

	infos := make([]ShipmentInfo, 0, len(shipments))
	for i := range shipments {
		infos = append(infos, *toShipmentInfo(&shipments[i]))
	}
	return infos, nil
}

// GetEvents returns the audit trail of one shipment. Trail visibility follows
// the shipment's visibility.
func (s *Service) GetEvents(ctx context.Context, caller identity.PrincipalContext, shipmentID uuid.UUID) ([]ShipmentEventInfo, error) {
	if _, err := s.loadForRead(ctx, caller, shipmentID); err != nil {
		return nil, err
	}

	events, err := s.eventRepo.FindByShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	infos := make([]ShipmentEventInfo, 0, len(events))
	for i := range events {
		e := &events[i]
		infos = append(infos, ShipmentEventInfo{
			ID:          e.ID,
			ShipmentID:  e.ShipmentID,
			EventType:   e.Type,
			Data:        e.Data,
			PrincipalID: e.TriggeredBy,
			CreatedAt:   e.OccurredAt,
		})
	}
	return infos, nil
}

// RunDeliveryCheck surveys in-flight shipments for overdue deliveries, at
// risk deliveries and missing tracking numbers. Invoked by the scheduler
// under the system principal; it only reads and reports, the flags surface
// through the action queue.
func (s *Service) RunDeliveryCheck(ctx context.Context, caller identity.PrincipalContext, now time.Time) (*DeliveryCheckResult, error) {
	if err := s.evaluator.Evaluate(caller, authz.OpRead, authz.RecordRef{Kind: authz.KindShipment}); err != nil {
		return nil, err
	}

	shipments, err := s.shipmentRepo.FindAll(ctx, shipping.ShipmentFilter{InFlightOnly: true})
	if err != nil {
		return nil, err
	}

	result := &DeliveryCheckResult{Examined: len(shipments)}
	for i := range shipments {
		sh := &shipments[i]
		switch {
		case sh.DeliveryOverdue(now):
			result.Overdue++
			s.logger.Warn("Shipment delivery overdue",
				zap.String("shipment_id", sh.ID.String()),
				zap.Timep("expected", sh.ExpectedDeliveryDate))
		case sh.DeliveryAtRisk(now, DeliveryRiskWindow):
			result.AtRisk++
		}
		if sh.MissingTracking(now) {
			result.MissingTracking++
			s.logger.Warn("Shipment missing tracking number",
				zap.String("shipment_id", sh.ID.String()))
		}
	}

	s.logger.Info("Delivery check finished",
		zap.Int("examined", result.Examined),
		zap.Int("overdue", result.Overdue),
		zap.Int("at_risk", result.AtRisk),
		zap.Int("missing_tracking", result.MissingTracking))

	return result, nil
}

// loadForRead fetches a shipment for the caller. Internal and system callers
// fetch unscoped; everyone else fetches through the org scope, so a foreign
// shipment and a missing ID are the same absence.
func (s *Service) loadForRead(ctx context.Context, caller identity.PrincipalContext, shipmentID uuid.UUID) (*shipping.Shipment, error) {
	if caller.IsInternal() || caller.IsSystem() {
		sh, err := s.shipmentRepo.FindByID(ctx, shipmentID)
		if err != nil {
			return nil, err
		}
		if err := s.evaluator.Evaluate(caller, authz.OpRead, authz.RecordRef{
			Kind:           authz.KindShipment,
			OrganizationID: sh.OrganizationID,
		}); err != nil {
			return nil, err
		}
		return sh, nil
	}

	if err := s.evaluator.Evaluate(caller, authz.OpRead, authz.RecordRef{
		Kind:           authz.KindShipment,
		OrganizationID: caller.OrganizationID,
	}); err != nil {
		return nil, err
	}
	sh, err := s.shipmentRepo.FindByIDForOrg(ctx, caller.OrganizationID, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Evaluate(caller, authz.OpRead, authz.RecordRef{
		Kind:           authz.KindShipment,
		OrganizationID: sh.OrganizationID,
	}); err != nil {
		return nil, shared.ErrNotFound
	}
	return sh, nil
}

// loadForUpdate fetches a shipment and authorizes an update on it
func (s *Service) loadForUpdate(ctx context.Context, caller identity.PrincipalContext, shipmentID uuid.UUID) (*shipping.Shipment, error) {
	sh, err := s.shipmentRepo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Evaluate(caller, authz.OpUpdate, authz.RecordRef{
		Kind:           authz.KindShipment,
		OrganizationID: sh.OrganizationID,
	}); err != nil {
		return nil, err
	}
	return sh, nil
}

// statusEvent attributes the audit row to the caller, or to the system when
// the transition came from automation
func (s *Service) statusEvent(caller identity.PrincipalContext, sh *shipping.Shipment, data map[string]any) *shipping.ShipmentEvent {
	if caller.IsSystem() {
		return shipping.NewSystemShipmentEvent(sh, shipping.AuditStatusChanged, data)
	}
	return shipping.NewShipmentEvent(sh, shipping.AuditStatusChanged, data, caller.PrincipalID)
}

func toShipmentInfo(sh *shipping.Shipment) *ShipmentInfo {
	return &ShipmentInfo{
		ID:                   sh.ID,
		OrganizationID:       sh.OrganizationID,
		ProjectID:            sh.ProjectID,
		Status:               sh.Status.String(),
		Carrier:              sh.Carrier,
		TrackingNumber:       sh.TrackingNumber,
		ExpectedDeliveryDate: sh.ExpectedDeliveryDate,
		ActualShipDate:       sh.ActualShipDate,
		ActualDeliveryDate:   sh.ActualDeliveryDate,
		FailureReason:        sh.FailureReason,
		CreatedAt:            sh.CreatedAt,
		UpdatedAt:            sh.UpdatedAt,
	}
}
