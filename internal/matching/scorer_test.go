package matching

import (
	"testing"

	"github.com/dots-fit/dots-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func userWith(sports, goals []uint, location string, age int) *models.User {
	u := &models.User{Location: location, Age: age}
	for _, id := range sports {
		u.Sports = append(u.Sports, models.Sport{ID: id})
	}
	for _, id := range goals {
		u.Goals = append(u.Goals, models.Goal{ID: id})
	}
	return u
}

func TestScorePerfectMatch(t *testing.T) {
	a := userWith([]uint{1, 2}, []uint{10}, "Prague", 30)
	b := userWith([]uint{1, 2}, []uint{10}, "Prague", 31)
	active := ActivityLevel{Count: 6, Known: true}

	assert.Equal(t, 100.0, Score(a, b, active, active))
}

func TestScoreEmptyProfiles(t *testing.T) {
	a := &models.User{}
	b := &models.User{}

	// Neutral credits only: half sports + half goals + missing location +
	// unknown activity
	assert.Equal(t, 40.0, Score(a, b, ActivityLevel{}, ActivityLevel{}))
}

func TestScorePartialSportsOverlap(t *testing.T) {
	a := userWith([]uint{1, 2}, nil, "", 0)
	b := userWith([]uint{1, 3}, nil, "", 0)

	// Jaccard 1/3 on sports, neutral goals, missing locations, no ages,
	// unknown activity
	assert.Equal(t, 34.17, Score(a, b, ActivityLevel{}, ActivityLevel{}))
}

func TestScoreFloor(t *testing.T) {
	a := userWith([]uint{1}, []uint{10}, "Lisbon", 20)
	b := userWith([]uint{2}, []uint{11}, "Oslo", 40)

	// Every factor zeroes out except the unknown-activity neutral credit
	assert.Equal(t, 5.0, Score(a, b, ActivityLevel{Count: 9, Known: true}, ActivityLevel{}))
}

func TestScoreSymmetry(t *testing.T) {
	a := userWith([]uint{1, 2, 3}, []uint{10, 11}, "Berlin, Germany", 28)
	b := userWith([]uint{2, 4}, []uint{11}, "Munich, Germany", 35)
	actA := ActivityLevel{Count: 4, Known: true}
	actB := ActivityLevel{Count: 1, Known: true}

	assert.Equal(t, Score(a, b, actA, actB), Score(b, a, actB, actA))
}

func TestScoreBounds(t *testing.T) {
	profiles := []*models.User{
		{},
		userWith([]uint{1}, nil, "x", 1),
		userWith([]uint{1, 2, 3}, []uint{10, 11}, "Berlin", 99),
	}
	activities := []ActivityLevel{{}, {Count: 0, Known: true}, {Count: 50, Known: true}}

	for _, a := range profiles {
		for _, b := range profiles {
			for _, actA := range activities {
				for _, actB := range activities {
					s := Score(a, b, actA, actB)
					assert.GreaterOrEqual(t, s, 0.0)
					assert.LessOrEqual(t, s, 100.0)
				}
			}
		}
	}
}

func TestLocationFactor(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want float64
	}{
		{"exact after normalization", "  Prague ", "prague", 0.20},
		{"separator insensitive", "New York, NY", "newyork ny", 0.18},
		{"substring", "prague", "prague 7", 0.12},
		{"shared token", "brooklyn new york", "albany new york", 0.08},
		{"one missing", "", "prague", 0.05},
		{"both missing", "", "", 0.05},
		{"unrelated", "lisbon", "oslo", 0.0},
		{"short tokens ignored", "a b c", "a b d", 0.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, locationFactor(tc.a, tc.b), 1e-9)
		})
	}
}

func TestAgeFactor(t *testing.T) {
	cases := []struct {
		name string
		a, b int
		want float64
	}{
		{"close", 30, 32, 0.10},
		{"near", 30, 35, 0.075},
		{"moderate", 30, 40, 0.05},
		{"far", 30, 45, 0.025},
		{"too far", 30, 46, 0.0},
		{"missing age", 0, 30, 0.0},
		{"both missing", 0, 0, 0.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, ageFactor(tc.a, tc.b), 1e-9)
			assert.InDelta(t, tc.want, ageFactor(tc.b, tc.a), 1e-9)
		})
	}
}

func TestActivityFactor(t *testing.T) {
	known := func(n int) ActivityLevel { return ActivityLevel{Count: n, Known: true} }
	cases := []struct {
		name string
		a, b ActivityLevel
		want float64
	}{
		{"both very active", known(5), known(8), 0.10},
		{"both moderately active", known(3), known(4), 0.075},
		{"both inactive", known(0), known(2), 0.05},
		{"far apart", known(1), known(15), 0.02},
		{"mixed mid", known(2), known(4), 0.05},
		{"unknown side", ActivityLevel{}, known(9), 0.05},
		{"both unknown", ActivityLevel{}, ActivityLevel{}, 0.05},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, activityFactor(tc.a, tc.b), 1e-9)
		})
	}
}

func TestGoalsFactorHalfCreditWhenBothEmpty(t *testing.T) {
	assert.InDelta(t, 0.125, goalsFactor(map[uint]struct{}{}, map[uint]struct{}{}), 1e-9)
}

func TestSportsFactorOneSidedEmpty(t *testing.T) {
	one := map[uint]struct{}{1: {}}
	assert.InDelta(t, 0.0, sportsFactor(one, map[uint]struct{}{}), 1e-9)
	assert.InDelta(t, 0.0, sportsFactor(map[uint]struct{}{}, one), 1e-9)
}
