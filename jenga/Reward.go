package jenga

// FallPenalty is the reward received when the tower collapses. It is
// large enough to dominate any base reward or stability credit.
const FallPenalty float64 = -50

// CalculateReward returns the reward for executing action on the
// tower. Higher levels are riskier to remove from and earn a larger
// base reward, and blue blocks earn a bonus over yellow and green.
//
// Stability measurements quantify the tilt of the tower, so lower is
// better. The reward credits a decrease in tilt relative to the
// previous measurement and penalizes an increase. On the first removal
// of an episode there is no previous measurement: previousStability
// should then be nil, and the action is penalized by the absolute tilt
// it leaves behind. A pointer to 0 and nil are deliberately distinct,
// a previous measurement of exactly 0 is still a measurement.
//
// CalculateReward is deterministic and has no side effects.
func CalculateReward(action Action, isFallen bool, previousStability *float64,
	currentStability float64) float64 {
	baseReward := float64(action.Level)
	if action.Color == Blue {
		baseReward++
	}

	var stabilityPenalty float64
	if previousStability != nil {
		stabilityPenalty = *previousStability - currentStability
	} else {
		stabilityPenalty = -currentStability
	}

	var fallPenalty float64
	if isFallen {
		fallPenalty = FallPenalty
	}

	return baseReward + stabilityPenalty + fallPenalty
}
