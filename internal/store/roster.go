package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/rosterhub/roster-api/internal/models"
)

// Roster owns the in-memory members, assignments and the notification log.
// All mutations go through its methods; persistence is layered on top by the
// roster service, which snapshots the state write-through after every change.
type Roster struct {
	mu            sync.RWMutex
	members       []models.Member
	assignments   []models.Assignment
	notifications []models.Notification
	now           func() time.Time
}

// New returns an empty roster.
func New() *Roster {
	return &Roster{now: time.Now}
}

// SetClock overrides the notification timestamp source, for tests.
func (r *Roster) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Seed returns the built-in starter dataset used when no snapshot exists.
func Seed() models.Snapshot {
	johnPhone := "555-1234"
	sarahPhone := "555-5678"
	return models.Snapshot{
		Members: []models.Member{
			{ID: "1", Name: "John Smith", Email: "john@example.com", Phone: &johnPhone},
			{ID: "2", Name: "Sarah Johnson", Email: "sarah@example.com", Phone: &sarahPhone},
		},
		Assignments: []models.Assignment{},
	}
}

// Restore replaces members and assignments with the snapshot contents. The
// notification log is runtime history and is left untouched.
func (r *Roster) Restore(snap models.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = cloneMembers(snap.Members)
	r.assignments = append([]models.Assignment(nil), snap.Assignments...)
}

// Snapshot returns a deep copy of the persistable roster state. Neither side
// can reach the other's data through it, Phone pointers included.
func (r *Roster) Snapshot() models.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return models.Snapshot{
		Members:     cloneMembers(r.members),
		Assignments: append([]models.Assignment(nil), r.assignments...),
	}
}

func cloneMembers(members []models.Member) []models.Member {
	cloned := append([]models.Member(nil), members...)
	for i := range cloned {
		if cloned[i].Phone != nil {
			phone := *cloned[i].Phone
			cloned[i].Phone = &phone
		}
	}
	return cloned
}

// Members returns the roster members in insertion order.
func (r *Roster) Members() []models.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Member(nil), r.members...)
}

// FindMember returns the member with the given id.
func (r *Roster) FindMember(id string) (models.Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findMemberLocked(id)
}

// FindMemberByEmail returns the member with the given email address.
func (r *Roster) FindMemberByEmail(email string) (models.Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.Email == email {
			return m, true
		}
	}
	return models.Member{}, false
}

// AddMember appends a member to the roster.
func (r *Roster) AddMember(member models.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = append(r.members, member)
}

// RemoveMember deletes the member and cascades deletion of every assignment
// referencing it. It reports whether the member existed and how many
// assignment rows were removed.
func (r *Roster) RemoveMember(id string) (removedAssignments int, found bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.members[:0]
	for _, m := range r.members {
		if m.ID == id {
			found = true
			continue
		}
		kept = append(kept, m)
	}
	r.members = kept

	if !found {
		return 0, false
	}

	keptAssignments := r.assignments[:0]
	for _, a := range r.assignments {
		if a.MemberID == id {
			removedAssignments++
			continue
		}
		keptAssignments = append(keptAssignments, a)
	}
	r.assignments = keptAssignments

	return removedAssignments, true
}

// Assign records a (date, member) pairing. It is idempotent: an existing row
// with the same composite key is left untouched and false is returned.
func (r *Roster) Assign(date, memberID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.assignments {
		if a.Date == date && a.MemberID == memberID {
			return false
		}
	}

	r.assignments = append(r.assignments, models.Assignment{Date: date, MemberID: memberID, Notified: false})
	return true
}

// Unassign removes the matching assignment row when present.
func (r *Roster) Unassign(date, memberID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, a := range r.assignments {
		if a.Date == date && a.MemberID == memberID {
			r.assignments = append(r.assignments[:i], r.assignments[i+1:]...)
			return true
		}
	}
	return false
}

// MembersForDate resolves the members assigned to a date, silently dropping
// assignments whose member no longer exists.
func (r *Roster) MembersForDate(date string) []models.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var members []models.Member
	for _, a := range r.assignments {
		if a.Date != date {
			continue
		}
		if m, ok := r.findMemberLocked(a.MemberID); ok {
			members = append(members, m)
		}
	}
	return members
}

// AssignmentsForMember returns the member's assignments in insertion order.
func (r *Roster) AssignmentsForMember(memberID string) []models.Assignment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var assignments []models.Assignment
	for _, a := range r.assignments {
		if a.MemberID == memberID {
			assignments = append(assignments, a)
		}
	}
	return assignments
}

// AssignmentCount reports the number of assignment rows.
func (r *Roster) AssignmentCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.assignments)
}

// MarkNotified flips every unnotified assignment on the date whose member
// still resolves, emitting one notification record per send. Rows whose
// member no longer exists are left untouched and produce no record. Calling
// it again for the same date emits nothing new.
func (r *Roster) MarkNotified(date string) []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	var emitted []models.Notification
	for i, a := range r.assignments {
		if a.Date != date || a.Notified {
			continue
		}
		member, ok := r.findMemberLocked(a.MemberID)
		if !ok {
			continue
		}
		record := models.Notification{
			Message: fmt.Sprintf("Notified %s for %s - Email sent to %s", member.Name, date, member.Email),
			SentAt:  r.now(),
		}
		r.notifications = append([]models.Notification{record}, r.notifications...)
		emitted = append(emitted, record)
		r.assignments[i].Notified = true
	}
	return emitted
}

// HasPending reports whether at least one resolvable assignment on the date
// is still unnotified. It is a display signal only; MarkNotified is safe to
// call regardless.
func (r *Roster) HasPending(date string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.assignments {
		if a.Date != date || a.Notified {
			continue
		}
		if _, ok := r.findMemberLocked(a.MemberID); ok {
			return true
		}
	}
	return false
}

// Notifications returns the log, most recent first.
func (r *Roster) Notifications() []models.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Notification(nil), r.notifications...)
}

func (r *Roster) findMemberLocked(id string) (models.Member, bool) {
	for _, m := range r.members {
		if m.ID == id {
			return m, true
		}
	}
	return models.Member{}, false
}
