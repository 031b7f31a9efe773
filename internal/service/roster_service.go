package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rosterhub/roster-api/internal/dto"
	"github.com/rosterhub/roster-api/internal/models"
	"github.com/rosterhub/roster-api/internal/schedule"
	"github.com/rosterhub/roster-api/internal/store"
	appErrors "github.com/rosterhub/roster-api/pkg/errors"
)

// Snapshotter loads and saves the durable roster snapshot.
type Snapshotter interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snap models.Snapshot) error
}

// RosterService owns all roster mutations. Every write goes through the
// in-memory store first and is then persisted write-through as a full
// snapshot, mirroring how the grid cache is invalidated on each change.
type RosterService struct {
	store     *store.Roster
	snapshots Snapshotter
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRosterService constructs a RosterService instance.
func NewRosterService(roster *store.Roster, snapshots Snapshotter, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RosterService{store: roster, snapshots: snapshots, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// Restore hydrates the store from the persisted snapshot, falling back to
// the seed dataset when none exists. The seed is written back so the next
// boot finds a snapshot.
func (s *RosterService) Restore(ctx context.Context) error {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster snapshot")
	}
	if snap == nil {
		seed := store.Seed()
		s.store.Restore(seed)
		s.logger.Info("no roster snapshot found, seeded starter dataset", zap.Int("members", len(seed.Members)))
		s.persist(ctx)
		return nil
	}
	s.store.Restore(*snap)
	s.logger.Info("roster snapshot restored",
		zap.Int("members", len(snap.Members)),
		zap.Int("assignments", len(snap.Assignments)))
	return nil
}

// Members lists the roster members in insertion order.
func (s *RosterService) Members(ctx context.Context) []models.Member {
	return s.store.Members()
}

// Member returns a single roster member by id.
func (s *RosterService) Member(ctx context.Context, id string) (*models.Member, error) {
	member, ok := s.store.FindMember(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
	}
	return &member, nil
}

// AddMember registers a new roster member. Emails are unique across the
// roster so member accounts can bind to exactly one entry.
func (s *RosterService) AddMember(ctx context.Context, req dto.AddMemberRequest) (*models.Member, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid member payload")
	}

	if _, exists := s.store.FindMemberByEmail(req.Email); exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "a member with this email already exists")
	}

	member := models.Member{
		ID:    uuid.NewString(),
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	s.store.AddMember(member)
	s.persist(ctx)

	s.logger.Info("member added", zap.String("member_id", member.ID))
	return &member, nil
}

// EnsureMember returns the roster member with the given email, creating one
// when absent. Used by signup to bind accounts to roster entries.
func (s *RosterService) EnsureMember(ctx context.Context, name, email string, phone *string) (*models.Member, error) {
	if existing, ok := s.store.FindMemberByEmail(email); ok {
		return &existing, nil
	}

	member := models.Member{ID: uuid.NewString(), Name: name, Email: email, Phone: phone}
	s.store.AddMember(member)
	s.persist(ctx)

	s.logger.Info("member created during signup", zap.String("member_id", member.ID))
	return &member, nil
}

// RemoveMember deletes a member and cascades deletion of their assignments.
// Notification history referencing the member is retained.
func (s *RosterService) RemoveMember(ctx context.Context, id string) error {
	removed, found := s.store.RemoveMember(id)
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "member not found")
	}
	s.persist(ctx)

	s.logger.Info("member removed",
		zap.String("member_id", id),
		zap.Int("assignments_removed", removed))
	return nil
}

// Assign pairs a member with an occurrence date. Repeating an existing
// pairing is a no-op.
func (s *RosterService) Assign(ctx context.Context, req dto.AssignRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	if _, ok := s.store.FindMember(req.MemberID); !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "member not found")
	}

	if s.store.Assign(req.Date, req.MemberID) {
		s.persist(ctx)
	}
	return nil
}

// Unassign removes the (date, member) pairing when present.
func (s *RosterService) Unassign(ctx context.Context, date, memberID string) error {
	if _, err := time.Parse(schedule.DateLayout, date); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
	}
	if memberID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "member_id is required")
	}

	if !s.store.Unassign(date, memberID) {
		return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	s.persist(ctx)
	return nil
}

// Notify marks every unnotified assignment on the date as notified and
// returns the emitted notification messages. Already-notified rows and rows
// whose member no longer exists emit nothing.
func (s *RosterService) Notify(ctx context.Context, date string) (*dto.NotifyResponse, error) {
	if _, err := time.Parse(schedule.DateLayout, date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
	}

	emitted := s.store.MarkNotified(date)
	if len(emitted) > 0 {
		s.persist(ctx)
		if s.metrics != nil {
			s.metrics.CountNotifications(len(emitted))
		}
	}

	messages := make([]string, 0, len(emitted))
	for _, record := range emitted {
		messages = append(messages, record.Message)
	}

	s.logger.Info("notifications sent", zap.String("date", date), zap.Int("count", len(emitted)))
	return &dto.NotifyResponse{Date: date, Notified: len(emitted), Messages: messages}, nil
}

// Notifications returns the notification log, most recent first.
func (s *RosterService) Notifications(ctx context.Context) []models.Notification {
	return s.store.Notifications()
}

// persist writes the current snapshot through to storage and drops the grid
// cache. A failed save is logged and absorbed; in-memory state stands and
// the next mutation rewrites the full snapshot anyway.
func (s *RosterService) persist(ctx context.Context) {
	start := time.Now()
	err := s.snapshots.Save(ctx, s.store.Snapshot())
	if s.metrics != nil {
		s.metrics.ObserveSnapshotSave(time.Since(start))
	}
	if err != nil {
		s.logger.Error("failed to persist roster snapshot", zap.Error(err))
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, scheduleGridCacheKey); err != nil {
			s.logger.Warn("failed to invalidate schedule cache", zap.Error(err))
		}
	}
}
