package balancer

// ConstraintKind tags the three placement-rule variants.
type ConstraintKind string

const (
	// SameTeam requires all listed players to end up on one (any) team.
	SameTeam ConstraintKind = "same_team"
	// DifferentTeam forbids all listed players from sharing one team.
	DifferentTeam ConstraintKind = "different_team"
	// PinnedToTeam requires all listed players on the team at Team (1-based).
	PinnedToTeam ConstraintKind = "pinned_to_team"
)

// Constraint is one placement rule over player ids.
type Constraint struct {
	Kind    ConstraintKind `json:"kind"`
	Team    int            `json:"team,omitempty"`
	Players []int          `json:"players"`
}

func Same(players ...int) Constraint {
	return Constraint{Kind: SameTeam, Players: players}
}

func Separate(players ...int) Constraint {
	return Constraint{Kind: DifferentTeam, Players: players}
}

func Pinned(team int, players ...int) Constraint {
	return Constraint{Kind: PinnedToTeam, Team: team, Players: players}
}

type idSet map[int]struct{}

func (s idSet) containsAll(ids []int) bool {
	for _, id := range ids {
		if _, ok := s[id]; !ok {
			return false
		}
	}
	return true
}

// activeConstraints narrows constraint groups to the players actually in the
// pool. Same/different groups that keep fewer than two members are trivially
// satisfiable and dropped; a pinned group stays meaningful with one member.
func activeConstraints(constraints []Constraint, pool idSet) []Constraint {
	active := make([]Constraint, 0, len(constraints))
	for _, c := range constraints {
		present := make([]int, 0, len(c.Players))
		for _, id := range c.Players {
			if _, ok := pool[id]; ok {
				present = append(present, id)
			}
		}
		minMembers := 2
		if c.Kind == PinnedToTeam {
			minMembers = 1
		}
		if len(present) < minMembers {
			continue
		}
		active = append(active, Constraint{Kind: c.Kind, Team: c.Team, Players: present})
	}
	return active
}

func hasPinned(constraints []Constraint) bool {
	for _, c := range constraints {
		if c.Kind == PinnedToTeam {
			return true
		}
	}
	return false
}

// satisfies reports whether the partition (as per-team id sets) passes every
// constraint. Pinned team indices are validated at configuration time; an
// out-of-range index here rejects the partition rather than panicking.
func satisfies(teams []idSet, constraints []Constraint) bool {
	for _, c := range constraints {
		switch c.Kind {
		case SameTeam:
			found := false
			for _, t := range teams {
				if t.containsAll(c.Players) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case DifferentTeam:
			for _, t := range teams {
				if t.containsAll(c.Players) {
					return false
				}
			}
		case PinnedToTeam:
			if c.Team < 1 || c.Team > len(teams) {
				return false
			}
			if !teams[c.Team-1].containsAll(c.Players) {
				return false
			}
		}
	}
	return true
}
