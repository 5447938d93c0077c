// Package rank turns a tier, division and LP triple into a single ordered
// number so that two rank snapshots can be compared across tier boundaries.
package rank

import (
	"fmt"
	"slices"
)

// Ordered from weakest to strongest
var tiers = []string{"IRON", "BRONZE", "SILVER", "GOLD", "PLATINUM", "EMERALD", "DIAMOND", "MASTER", "GRANDMASTER", "CHALLENGER"}
var divisions = []string{"IV", "III", "II", "I"}

// Index of MASTER in tiers. Divisions do not exist from here on
const apexTierIndex = 7

// Absolute value of MASTER 0 LP, just above DIAMOND I 100 LP
const apexBase = 2800

// Convert a rank into absolute LP.
// Unknown tiers or divisions give 0
func ToAbsolute(tier string, division string, lp int) int {
	tierIndex := slices.Index(tiers, tier)
	if tierIndex == -1 {
		return 0
	}
	if tierIndex >= apexTierIndex {
		return apexBase + (tierIndex-apexTierIndex)*1000 + lp
	}
	divisionIndex := slices.Index(divisions, division)
	if divisionIndex == -1 {
		return 0
	}
	return tierIndex*400 + divisionIndex*100 + lp
}

func IsApex(tier string) bool {
	return slices.Index(tiers, tier) >= apexTierIndex
}

// A snapshot of a rank in one queue, either unranked or a full triple
type Snapshot struct {
	Tier     string
	Division string
	LP       int
	ranked   bool
}

func Unranked() Snapshot {
	return Snapshot{}
}

func Ranked(tier string, division string, lp int) Snapshot {
	return Snapshot{Tier: tier, Division: division, LP: lp, ranked: true}
}

// Build a snapshot from nullable fields. Any missing field makes it unranked
func FromFields(tier *string, division *string, lp *int) Snapshot {
	if tier == nil || division == nil || lp == nil {
		return Unranked()
	}
	return Ranked(*tier, *division, *lp)
}

func (s Snapshot) IsRanked() bool {
	return s.ranked
}

func (s Snapshot) Absolute() int {
	if !s.ranked {
		return 0
	}
	return ToAbsolute(s.Tier, s.Division, s.LP)
}

// Tier and division only, the way it is shown to players
func (s Snapshot) Title() string {
	if !s.ranked {
		return "Unranked"
	}
	if IsApex(s.Tier) {
		return s.Tier
	}
	return fmt.Sprintf("%s %s", s.Tier, s.Division)
}

func (s Snapshot) String() string {
	if !s.ranked {
		return "Unranked"
	}
	return fmt.Sprintf("%s %d LP", s.Title(), s.LP)
}

// Signed LP difference between two snapshots.
// Nothing can be said about an unranked side, so that counts as no change
func Delta(before Snapshot, after Snapshot) int {
	if !before.ranked || !after.ranked {
		return 0
	}
	return after.Absolute() - before.Absolute()
}
