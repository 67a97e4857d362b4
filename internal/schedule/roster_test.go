package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-staffops/internal/schedule"
)

func TestBuildRoster(t *testing.T) {
	t.Run("leader first with own membership", func(t *testing.T) {
		roster := schedule.BuildRoster(newTeam())

		assert.Len(t, roster, 3)
		assert.True(t, roster[0].IsLeader)
		assert.Equal(t, "mem-l", roster[0].MembershipID)
		assert.True(t, roster[0].Identity.Contains("acc-l"))
		assert.Equal(t, "mem-1", roster[1].MembershipID)
		assert.Equal(t, "mem-2", roster[2].MembershipID)
	})

	t.Run("duplicate identities collapse", func(t *testing.T) {
		team := newTeam()
		// same person, known only by account id
		team.Members = append(team.Members, schedule.MembershipLink{
			ID:       "mem-dup",
			Employee: schedule.Person{AccountID: "acc-1"},
		})

		roster := schedule.BuildRoster(team)
		assert.Len(t, roster, 3)
	})

	t.Run("leader outside the member list", func(t *testing.T) {
		team := newTeam()
		team.Members = team.Members[1:]

		roster := schedule.BuildRoster(team)
		assert.Len(t, roster, 3)
		assert.True(t, roster[0].IsLeader)
		assert.Empty(t, roster[0].MembershipID)
	})

	t.Run("leader known by account id, listed by employee id", func(t *testing.T) {
		team := newTeam()
		team.Leader = &schedule.Person{AccountID: "acc-l"}

		roster := schedule.BuildRoster(team)
		if assert.Len(t, roster, 3) {
			assert.True(t, roster[0].IsLeader)
			assert.Equal(t, "mem-l", roster[0].MembershipID)
			assert.Equal(t, "Lena", roster[0].Person.Name)
			assert.True(t, roster[0].Identity.Contains("emp-l"))
			assert.False(t, roster[1].IsLeader)
			assert.Equal(t, "mem-1", roster[1].MembershipID)
		}
		assert.True(t, schedule.IsLeaderOf(team, schedule.CandidateIDs("emp-l")))
	})

	t.Run("rebuilding is identical", func(t *testing.T) {
		team := newTeam()
		team.Members = append(team.Members, schedule.MembershipLink{
			ID:       "mem-dup",
			Employee: schedule.Person{AccountID: "acc-1"},
		})

		assert.Equal(t, schedule.BuildRoster(team), schedule.BuildRoster(team))
	})

	t.Run("no leader", func(t *testing.T) {
		team := newTeam()
		team.Leader = nil

		roster := schedule.BuildRoster(team)
		assert.Len(t, roster, 3)
		for _, e := range roster {
			assert.False(t, e.IsLeader)
		}
	})
}

func TestIsLeaderOf(t *testing.T) {
	team := newTeam()

	assert.True(t, schedule.IsLeaderOf(team, schedule.CandidateIDs("acc-l")))
	assert.False(t, schedule.IsLeaderOf(team, member1.Identity()))

	team.Leader = nil
	assert.False(t, schedule.IsLeaderOf(team, schedule.CandidateIDs("acc-l")))
}
