package matching

import (
	"math"
	"strings"

	"github.com/dots-fit/dots-backend/internal/models"
)

// Factor weights. They are additive and sum to exactly 1.0, so a perfect
// match scores 100 after scaling.
const (
	sportsWeight   = 0.35
	goalsWeight    = 0.25
	locationWeight = 0.20
	ageWeight      = 0.10
	activityWeight = 0.10
)

// Partial-credit constants for the individual factors
const (
	sportsPartialCredit    = 0.15
	locationStrippedCredit = 0.18
	locationSubstringCred  = 0.12
	locationTokenCredit    = 0.08
	locationMissingCredit  = 0.05
	activityNeutralCredit  = 0.05
	activityMidTierCredit  = 0.075
	activityLowTierCredit  = 0.05
	activityFarApartCredit = 0.02
)

// ActivityLevel is the resolved approved-attendance count for one user.
// Known is false when the counter lookup failed or was unavailable; the
// activity factor then falls back to its neutral default instead of erroring.
type ActivityLevel struct {
	Count int
	Known bool
}

// Score computes the compatibility score between two user profiles as a
// value in [0, 100], rounded to 2 decimal places. It is symmetric in its
// two profiles and never fails: every missing input degrades to the
// documented neutral credit for its factor.
func Score(a, b *models.User, actA, actB ActivityLevel) float64 {
	score := 0.0
	score += sportsFactor(sportIDSet(a), sportIDSet(b))
	score += goalsFactor(goalIDSet(a), goalIDSet(b))
	score += locationFactor(a.Location, b.Location)
	score += ageFactor(a.Age, b.Age)
	score += activityFactor(actA, actB)
	return round2(score * 100)
}

func sportIDSet(u *models.User) map[uint]struct{} {
	ids := make(map[uint]struct{}, len(u.Sports))
	for _, s := range u.Sports {
		ids[s.ID] = struct{}{}
	}
	return ids
}

func goalIDSet(u *models.User) map[uint]struct{} {
	ids := make(map[uint]struct{}, len(u.Goals))
	for _, g := range u.Goals {
		ids[g.ID] = struct{}{}
	}
	return ids
}

// sportsFactor scores the sports overlap. The trailing partial-match branch
// is shadowed by the Jaccard branch (both trigger on intersecting non-empty
// sets) but is kept deliberately: reordering it would change observed
// scores, so it stays exactly as the scoring contract documents it.
func sportsFactor(a, b map[uint]struct{}) float64 {
	if len(a) > 0 && len(b) > 0 {
		return jaccard(a, b) * sportsWeight
	} else if len(a) == 0 && len(b) == 0 {
		return sportsWeight / 2 // no signal on either side, neutral credit
	} else if len(a) > 0 && len(b) > 0 && intersects(a, b) {
		return sportsPartialCredit
	}
	return 0
}

// goalsFactor scores the goals overlap; same Jaccard rule as sports but
// without the partial-match branch
func goalsFactor(a, b map[uint]struct{}) float64 {
	if len(a) > 0 && len(b) > 0 {
		return jaccard(a, b) * goalsWeight
	} else if len(a) == 0 && len(b) == 0 {
		return goalsWeight / 2
	}
	return 0
}

// locationFactor compares the two free-text locations, degrading from exact
// match through progressively fuzzier comparisons
func locationFactor(locA, locB string) float64 {
	locA = strings.ToLower(strings.TrimSpace(locA))
	locB = strings.ToLower(strings.TrimSpace(locB))
	if locA == "" || locB == "" {
		return locationMissingCredit
	}
	if locA == locB {
		return locationWeight
	}
	if stripSeparators(locA) == stripSeparators(locB) {
		return locationStrippedCredit
	}
	if strings.Contains(locA, locB) || strings.Contains(locB, locA) {
		return locationSubstringCred
	}
	if sharesToken(locA, locB) {
		return locationTokenCredit
	}
	return 0
}

// ageFactor scores only when both ages are present (>0)
func ageFactor(ageA, ageB int) float64 {
	if ageA <= 0 || ageB <= 0 {
		return 0
	}
	diff := ageA - ageB
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 3:
		return ageWeight
	case diff <= 5:
		return 0.075
	case diff <= 10:
		return 0.05
	case diff <= 15:
		return 0.025
	}
	return 0
}

// activityFactor scores the similarity of the two approved-attendance counts
func activityFactor(a, b ActivityLevel) float64 {
	if !a.Known || !b.Known {
		return activityNeutralCredit
	}
	diff := a.Count - b.Count
	if diff < 0 {
		diff = -diff
	}
	switch {
	case a.Count >= 5 && b.Count >= 5:
		return activityWeight
	case a.Count >= 3 && b.Count >= 3:
		return activityMidTierCredit
	case a.Count <= 2 && b.Count <= 2:
		return activityLowTierCredit
	case diff > 10:
		return activityFarApartCredit
	}
	return activityNeutralCredit
}

func jaccard(a, b map[uint]struct{}) float64 {
	common := 0
	for id := range a {
		if _, ok := b[id]; ok {
			common++
		}
	}
	total := len(a) + len(b) - common
	if total == 0 {
		return 0
	}
	return float64(common) / float64(total)
}

func intersects(a, b map[uint]struct{}) bool {
	for id := range a {
		if _, ok := b[id]; ok {
			return true
		}
	}
	return false
}

func stripSeparators(s string) string {
	return strings.NewReplacer(" ", "", ",", "").Replace(s)
}

// sharesToken reports whether the two locations share a whitespace token
// longer than two characters
func sharesToken(a, b string) bool {
	tokens := make(map[string]struct{})
	for _, t := range strings.Fields(a) {
		t = strings.Trim(t, ",")
		if len(t) > 2 {
			tokens[t] = struct{}{}
		}
	}
	for _, t := range strings.Fields(b) {
		t = strings.Trim(t, ",")
		if len(t) > 2 {
			if _, ok := tokens[t]; ok {
				return true
			}
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
