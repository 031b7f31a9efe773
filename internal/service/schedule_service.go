package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rosterhub/roster-api/internal/dto"
	"github.com/rosterhub/roster-api/internal/schedule"
	"github.com/rosterhub/roster-api/internal/store"
	appErrors "github.com/rosterhub/roster-api/pkg/errors"
)

const scheduleGridCacheKey = "schedule:grid"

// ScheduleService builds the read views over the roster: the admin grid and
// the per-member dashboard. The grid is cached until the next roster
// mutation invalidates it.
type ScheduleService struct {
	store    *store.Roster
	cache    *CacheService
	logger   *zap.Logger
	weekday  time.Weekday
	weeks    int
	cacheTTL time.Duration
	now      func() time.Time
}

// NewScheduleService constructs a ScheduleService instance.
func NewScheduleService(roster *store.Roster, cache *CacheService, logger *zap.Logger, weekday time.Weekday, weeks int, cacheTTL time.Duration) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if weeks <= 0 {
		weeks = 8
	}
	return &ScheduleService{
		store:    roster,
		cache:    cache,
		logger:   logger,
		weekday:  weekday,
		weeks:    weeks,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// SetClock overrides the reference time source, for tests.
func (s *ScheduleService) SetClock(now func() time.Time) {
	s.now = now
}

// Grid returns the admin schedule grid over the upcoming occurrences. The
// second return value reports whether the payload came from cache.
func (s *ScheduleService) Grid(ctx context.Context) (*dto.ScheduleGrid, bool, error) {
	var cached dto.ScheduleGrid
	if hit, err := s.cache.Get(ctx, scheduleGridCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	grid := s.buildGrid()
	if err := s.cache.Set(ctx, scheduleGridCacheKey, grid, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache schedule grid", zap.Error(err))
	}
	return grid, false, nil
}

// MemberView returns the read-only dashboard for one member.
func (s *ScheduleService) MemberView(ctx context.Context, memberID string) (*dto.MemberSchedule, error) {
	member, ok := s.store.FindMember(memberID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
	}

	assignments := s.store.AssignmentsForMember(memberID)
	byDate := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		byDate[a.Date] = a.Notified
	}

	occurrences := schedule.NextOccurrences(s.weeks, s.now(), s.weekday)
	days := make([]dto.MemberScheduleDay, 0, len(occurrences))
	for _, occ := range occurrences {
		notified, assigned := byDate[occ.Date]
		days = append(days, dto.MemberScheduleDay{
			Date:     occ.Date,
			Display:  occ.Display,
			Assigned: assigned,
			Notified: notified,
		})
	}

	return &dto.MemberSchedule{
		MemberID:    member.ID,
		MemberName:  member.Name,
		Days:        days,
		Assignments: len(assignments),
	}, nil
}

func (s *ScheduleService) buildGrid() *dto.ScheduleGrid {
	occurrences := schedule.NextOccurrences(s.weeks, s.now(), s.weekday)
	days := make([]dto.ScheduleDay, 0, len(occurrences))
	for _, occ := range occurrences {
		assigned := s.store.MembersForDate(occ.Date)
		summaries := make([]dto.MemberSummary, 0, len(assigned))
		for _, m := range assigned {
			summaries = append(summaries, dto.MemberSummary{ID: m.ID, Name: m.Name, Email: m.Email})
		}
		days = append(days, dto.ScheduleDay{
			Date:     occ.Date,
			Display:  occ.Display,
			Assigned: summaries,
			Pending:  s.store.HasPending(occ.Date),
		})
	}
	return &dto.ScheduleGrid{Days: days, GeneratedAt: s.now().UTC()}
}
