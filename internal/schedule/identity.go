package schedule

import (
	"slices"

	scheduleerrors "go-staffops/internal/schedule/errors"
)

// IdentitySet is the de-duplicated set of non-empty ids one entity is known
// by. Two entities are the same identity when their sets intersect; no
// single field is trusted as the key.
type IdentitySet []string

func CandidateIDs(ids ...string) IdentitySet {
	set := make(IdentitySet, 0, len(ids))
	for _, id := range ids {
		if id == "" || slices.Contains(set, id) {
			continue
		}
		set = append(set, id)
	}
	return set
}

func (s IdentitySet) Empty() bool { return len(s) == 0 }

func (s IdentitySet) Contains(id string) bool {
	return id != "" && slices.Contains(s, id)
}

func (s IdentitySet) Intersects(other IdentitySet) bool {
	for _, id := range s {
		if other.Contains(id) {
			return true
		}
	}
	return false
}

func (s IdentitySet) Union(other IdentitySet) IdentitySet {
	return CandidateIDs(append(slices.Clone(s), other...)...)
}

func (p Person) Identity() IdentitySet {
	return CandidateIDs(p.ID, p.EmployeeID, p.AccountID, p.MembershipID)
}

// Identity collects the record's own id fields plus those of its cached
// employee. The store is not consistent about which of them it fills.
func (r AttendanceRecord) Identity() IdentitySet {
	set := CandidateIDs(r.EmployeeID, r.AccountID, r.MembershipID)
	if r.Employee != nil {
		set = set.Union(r.Employee.Identity())
	}
	return set
}

func SameIdentity(a, b IdentitySet) bool {
	return a.Intersects(b)
}

// MembershipLookup is the input of the membership-link fallback chain.
type MembershipLookup struct {
	Explicit string
	Record   *AttendanceRecord
	Cached   string
	Team     *Team
	Target   IdentitySet
}

// ResolveMembershipID tries, in order: the explicit field, the matched
// record, the cached roster value, a scan of the team's members.
func ResolveMembershipID(in MembershipLookup) (string, error) {
	if in.Explicit != "" {
		return in.Explicit, nil
	}
	if in.Record != nil && in.Record.MembershipID != "" {
		return in.Record.MembershipID, nil
	}
	if in.Cached != "" {
		return in.Cached, nil
	}
	if in.Team != nil && !in.Target.Empty() {
		if link, ok := findMembership(*in.Team, in.Target); ok {
			return link.ID, nil
		}
	}
	return "", scheduleerrors.ErrMissingMembershipLink
}

func findMembership(team Team, target IdentitySet) (MembershipLink, bool) {
	for _, m := range team.Members {
		if m.ID == "" {
			continue
		}
		if memberIdentity(m).Intersects(target) {
			return m, true
		}
	}
	return MembershipLink{}, false
}

// memberIdentity is the person's identity plus the link id itself.
func memberIdentity(m MembershipLink) IdentitySet {
	return m.Employee.Identity().Union(CandidateIDs(m.ID))
}
