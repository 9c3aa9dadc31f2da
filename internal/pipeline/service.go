package pipeline

import (
	"context"
	"errors"
	"sync"

	"prospecta_backend/internal/events"
	"prospecta_backend/platform/apperr"
	"prospecta_backend/platform/logger"

	"github.com/google/uuid"
)

// LeadStore persists the lead list and stage updates.
type LeadStore interface {
	ListLeads(ctx context.Context) ([]Lead, error)
	UpdateLeadStage(ctx context.Context, leadID uuid.UUID, stage string) error
}

// MoveResult reports both phases of a stage transition: the optimistic
// in-memory move and the durable write. Applied without Persisted means the
// board shows the new stage but storage does not; the caller decides how to
// reconcile (the UI flags the card as unsaved).
type MoveResult struct {
	LeadID    uuid.UUID `json:"leadId"`
	FromStage string    `json:"fromStage"`
	ToStage   string    `json:"toStage"`
	Applied   bool      `json:"applied"`
	Persisted bool      `json:"persisted"`
	Error     string    `json:"error,omitempty"`
}

// Service holds the board projection and applies stage transitions.
//
// The projection is rebuilt from the authoritative lead list rather than
// mutated ad hoc: reads fold the cached leads through BuildBoard, so a lead
// is always in exactly one column. Transitions on different leads proceed in
// parallel; a second transition for a lead whose previous transition is still
// in flight is rejected so the durable write cannot reorder against the
// in-memory state.
type Service struct {
	store LeadStore
	bus   events.Bus
	log   *logger.Logger

	mu       sync.Mutex
	leads    []Lead
	loaded   bool
	inflight map[uuid.UUID]struct{}
}

// NewService creates a new pipeline service.
func NewService(store LeadStore, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		bus:      bus,
		log:      log,
		inflight: make(map[uuid.UUID]struct{}),
	}
}

// Refresh reloads the projection from storage.
func (s *Service) Refresh(ctx context.Context) error {
	leads, err := s.store.ListLeads(ctx)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to load leads", err)
	}

	s.mu.Lock()
	s.leads = leads
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Board returns the full kanban projection.
func (s *Service) Board(ctx context.Context) (Board, error) {
	leads, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return BuildBoard(leads), nil
}

// ListByStage returns one board column.
func (s *Service) ListByStage(ctx context.Context, stage string) ([]Lead, error) {
	if !IsKnownStage(stage) {
		return nil, apperr.Validation("unknown pipeline stage: " + stage)
	}

	leads, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return BuildBoard(leads)[stage], nil
}

// MoveLead transitions a lead to the target stage. Any stage may be reached
// from any other; there is no terminal lock on won or lost. The in-memory
// projection is updated first, then the stage is persisted. A failed durable
// write does not roll back the optimistic move — the result carries the
// failure so the caller can surface it.
func (s *Service) MoveLead(ctx context.Context, leadID uuid.UUID, fromStage, toStage string) (MoveResult, error) {
	if !IsKnownStage(toStage) {
		return MoveResult{}, apperr.Validation("unknown target stage: " + toStage)
	}

	if err := s.ensureLoaded(ctx); err != nil {
		return MoveResult{}, err
	}

	s.mu.Lock()
	if _, busy := s.inflight[leadID]; busy {
		s.mu.Unlock()
		return MoveResult{}, apperr.Conflict("a transition for this lead is already in flight")
	}

	idx := -1
	for i := range s.leads {
		if s.leads[i].ID == leadID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return MoveResult{}, apperr.NotFound("lead not found")
	}

	oldStage := NormalizeStage(s.leads[idx].Stage)
	if fromStage != "" && fromStage != oldStage {
		// stale client view; the move is applied from the actual stage anyway
		s.log.Debug("stage move from stale column", "leadId", leadID, "claimed", fromStage, "actual", oldStage)
	}
	s.leads[idx].Stage = toStage // optimistic: readers see the move immediately
	s.inflight[leadID] = struct{}{}
	leadName := s.leads[idx].Name
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, leadID)
		s.mu.Unlock()
	}()

	result := MoveResult{
		LeadID:    leadID,
		FromStage: oldStage,
		ToStage:   toStage,
		Applied:   true,
	}

	if err := s.store.UpdateLeadStage(ctx, leadID, toStage); err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			return MoveResult{}, apperr.NotFound("lead not found")
		}
		s.log.DatabaseError("update lead stage", err)
		result.Error = "failed to persist stage change"
		return result, nil
	}
	result.Persisted = true

	if s.bus != nil {
		s.bus.Publish(ctx, events.PipelineStageChanged{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    leadID,
			LeadName:  leadName,
			OldStage:  oldStage,
			NewStage:  toStage,
		})
	}

	return result, nil
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()

	if loaded {
		return nil
	}
	return s.Refresh(ctx)
}

func (s *Service) snapshot(ctx context.Context) ([]Lead, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Lead(nil), s.leads...), nil
}
