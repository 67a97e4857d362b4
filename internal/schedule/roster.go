package schedule

// BuildRoster returns one entry per distinct identity of the team: the
// leader first, then members in list order. A leader who is also listed as
// a member keeps that membership id.
func BuildRoster(team Team) []RosterEntry {
	roster := make([]RosterEntry, 0, len(team.Members)+1)
	var seen IdentitySet

	var leaderIdentity IdentitySet
	if team.Leader != nil {
		leaderIdentity = team.Leader.Identity()
	}

	if !leaderIdentity.Empty() {
		entry := RosterEntry{
			Person:       *team.Leader,
			Identity:     leaderIdentity,
			IsLeader:     true,
			MembershipID: team.Leader.MembershipID,
		}
		if link, ok := findMembership(team, leaderIdentity); ok {
			if entry.MembershipID == "" {
				entry.MembershipID = link.ID
			}
			entry.Identity = entry.Identity.Union(memberIdentity(link))
			if entry.Person.Name == "" {
				entry.Person.Name = link.Employee.Name
			}
		}
		roster = append(roster, entry)
		seen = seen.Union(entry.Identity)
	}

	for _, m := range team.Members {
		id := memberIdentity(m)
		if id.Empty() {
			continue
		}
		if id.Intersects(leaderIdentity) || id.Intersects(seen) {
			continue
		}
		roster = append(roster, RosterEntry{
			Person:       m.Employee,
			Identity:     id,
			MembershipID: m.ID,
		})
		seen = seen.Union(id)
	}

	return roster
}

func leaderEntry(roster []RosterEntry) (RosterEntry, bool) {
	for _, e := range roster {
		if e.IsLeader {
			return e, true
		}
	}
	return RosterEntry{}, false
}

// IsLeaderOf reports whether viewer is the team's leader. The leader's ids
// include those of the member entry it matches.
func IsLeaderOf(team Team, viewer IdentitySet) bool {
	if team.Leader == nil {
		return false
	}
	id := team.Leader.Identity()
	if link, ok := findMembership(team, id); ok {
		id = id.Union(memberIdentity(link))
	}
	return id.Intersects(viewer)
}
