package jenga

import (
	"math"
	"testing"
)

const tolerance float64 = 1e-12

func TestCalculateReward(t *testing.T) {
	tests := []struct {
		action            Action
		isFallen          bool
		previousStability *float64
		currentStability  float64
		want              float64
	}{
		// Blue block on level 3, tower steadied: (3+1) + (0.8-0.6)
		{Action{3, Blue}, false, stability(0.8), 0.6, 4.2},

		// Yellow block on the base, tower falls: 0 + (0.5-0.9) - 50
		{Action{0, Yellow}, true, stability(0.5), 0.9, -50.4},

		// Green earns no colour bonus
		{Action{5, Green}, false, stability(0.2), 0.2, 5.0},

		// No previous measurement penalizes by absolute tilt
		{Action{2, Yellow}, false, nil, 0.3, 1.7},

		// A previous measurement of exactly zero is not "no measurement"
		{Action{2, Yellow}, false, stability(0.0), 0.3, 1.7},

		// Collapse on the first removal
		{Action{1, Blue}, true, nil, 0.9, -48.9},
	}

	for _, test := range tests {
		got := CalculateReward(test.action, test.isFallen,
			test.previousStability, test.currentStability)
		if math.Abs(got-test.want) > tolerance {
			t.Errorf("reward for %v \n\twant(%v)\n\thave(%v)", test.action,
				test.want, got)
		}
	}
}

// TestCalculateRewardZeroPreviousStability pins down that the zero
// measurement and the missing measurement happen to agree. The source
// formula conflated the two by testing truthiness; the explicit
// optional keeps them distinct cases even though the numbers coincide
// when the fallback tilt equals the delta from zero.
func TestCalculateRewardZeroPreviousStability(t *testing.T) {
	withZero := CalculateReward(Action{4, Green}, false, stability(0.0), 0.25)
	withNone := CalculateReward(Action{4, Green}, false, nil, 0.25)

	if math.Abs(withZero-withNone) > tolerance {
		t.Errorf("zero and missing previous stability diverge: %v vs %v",
			withZero, withNone)
	}
}

func stability(s float64) *float64 {
	return &s
}
