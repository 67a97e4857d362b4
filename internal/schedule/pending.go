package schedule

import (
	"slices"
	"strings"

	scheduleerrors "go-staffops/internal/schedule/errors"
)

// PendingBuffer stages uncommitted status edits per (team, shift, day).
// It is not safe for concurrent use; Engine serializes access.
type PendingBuffer struct {
	groups map[GroupKey][]PendingChange
}

func NewPendingBuffer() *PendingBuffer {
	return &PendingBuffer{groups: make(map[GroupKey][]PendingChange)}
}

// Stage replaces the change of the same membership id in place, or appends
// it. The group is dirty afterwards.
func (b *PendingBuffer) Stage(key GroupKey, change PendingChange) error {
	if change.MembershipID == "" {
		return scheduleerrors.ErrMissingMembershipLink
	}
	change.Status = change.Status.OrPending()

	entries := b.groups[key]
	if i := slices.IndexFunc(entries, func(c PendingChange) bool {
		return c.MembershipID == change.MembershipID
	}); i >= 0 {
		entries[i] = change
		return nil
	}
	b.groups[key] = append(entries, change)
	return nil
}

// Settle removes committed changes from the group. A change staged again
// while the commit was in flight differs from what was sent and stays.
func (b *PendingBuffer) Settle(key GroupKey, committed []PendingChange) {
	entries := b.groups[key]
	entries = slices.DeleteFunc(entries, func(c PendingChange) bool {
		return slices.ContainsFunc(committed, func(s PendingChange) bool {
			return s.MembershipID == c.MembershipID && s.Status == c.Status && s.Notes == c.Notes
		})
	})
	if len(entries) == 0 {
		delete(b.groups, key)
		return
	}
	b.groups[key] = entries
}

// Clear drops the group without committing it.
func (b *PendingBuffer) Clear(key GroupKey) {
	delete(b.groups, key)
}

// Entries returns a copy of the group in staging order.
func (b *PendingBuffer) Entries(key GroupKey) []PendingChange {
	return slices.Clone(b.groups[key])
}

func (b *PendingBuffer) IsDirty(key GroupKey) bool {
	return len(b.groups[key]) > 0
}

func (b *PendingBuffer) Lookup(key GroupKey, membershipID string) (PendingChange, bool) {
	for _, c := range b.groups[key] {
		if c.MembershipID == membershipID {
			return c, true
		}
	}
	return PendingChange{}, false
}

// DirtyGroups lists every group with staged changes, sorted by key.
func (b *PendingBuffer) DirtyGroups() []GroupKey {
	keys := make([]GroupKey, 0, len(b.groups))
	for k, v := range b.groups {
		if len(v) > 0 {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b GroupKey) int {
		return strings.Compare(a.String(), b.String())
	})
	return keys
}

// Reset drops every group, e.g. when the view window changes.
func (b *PendingBuffer) Reset() {
	clear(b.groups)
}
