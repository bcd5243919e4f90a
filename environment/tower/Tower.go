// Package tower implements a physically simulated Jenga tower. The
// tower is a stack of levels with one block of each colour per level.
// Removing a block deletes its body from the simulation, the remaining
// blocks settle under gravity, and the agent observes the result as a
// rendered image of the tower.
package tower

import (
	"fmt"
	"math"

	"github.com/ByteArena/box2d"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/towerlab/jengaq/environment"
	"github.com/towerlab/jengaq/jenga"
	"github.com/towerlab/jengaq/timestep"
	"github.com/towerlab/jengaq/vision"
)

const (
	FPS float64 = 50

	// Pixels per Box2D world unit
	Scale float64 = 40.0

	XGravity float64 = 0.0
	YGravity float64 = -10.0

	ViewportW int = 256
	ViewportH int = 512

	// Block dimensions in world units
	BlockW float64 = 1.0
	BlockH float64 = 0.5

	// Horizontal gap between blocks on the same level so that fixtures
	// do not start an episode in contact
	BlockGap float64 = 0.02

	// Maximum horizontal jitter applied to each block on reset
	MaxJitter float64 = 0.03

	// Simulation steps run after each removal to let the tower settle
	SettleSteps int = 40

	velocityIterations int = 8
	positionIterations int = 3
)

// Collapse thresholds. A block that slides more than half its width
// off its home position, or drops below its home level, counts as
// fallen.
const (
	fallenSlide float64 = BlockW / 2.0
	fallenDrop  float64 = BlockH
)

// Tower is a simulated Jenga tower satisfying environment.Environment.
type Tower struct {
	world  box2d.B2World
	ground *box2d.B2Body

	blocks map[jenga.Action]*box2d.B2Body
	homes  map[jenga.Action]box2d.B2Vec2
	taken  map[jenga.Action]bool

	starter environment.UniformStarter

	stability     float64
	prevStability *float64
	fallen        bool

	stepNumber int
	stepLimit  int
}

// New creates a Tower and resets it to the start of an episode. The
// returned timestep is the first of that episode. stepLimit bounds the
// number of removals per episode; a non-positive limit means episodes
// end only when the tower falls or runs out of blocks.
func New(seed uint64, stepLimit int) (*Tower, timestep.TimeStep, error) {
	bounds := make([]r1.Interval, jenga.NumActions())
	for i := range bounds {
		bounds[i] = r1.Interval{Min: -MaxJitter, Max: MaxJitter}
	}

	t := &Tower{
		world:     box2d.MakeB2World(box2d.B2Vec2{X: XGravity, Y: YGravity}),
		starter:   environment.NewUniformStarter(bounds, seed),
		stepLimit: stepLimit,
	}

	step, err := t.Reset()
	if err != nil {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: could not reset "+
			"tower: %v", err)
	}
	return t, step, nil
}

// destroy removes all bodies from the simulation.
func (t *Tower) destroy() {
	if t.ground == nil {
		return
	}
	t.world.DestroyBody(t.ground)
	t.ground = nil

	for _, body := range t.blocks {
		t.world.DestroyBody(body)
	}
	t.blocks = nil
}

// Reset rebuilds the full tower and returns the first timestep of a
// new episode.
func (t *Tower) Reset() (timestep.TimeStep, error) {
	t.destroy()

	worldW := float64(ViewportW) / Scale

	// Ground
	groundDef := box2d.NewB2BodyDef()
	groundDef.Type = box2d.B2BodyType.B2_staticBody
	t.ground = t.world.CreateBody(groundDef)

	groundShape := box2d.NewB2EdgeShape()
	groundShape.Set(box2d.MakeB2Vec2(0.0, 0.0), box2d.MakeB2Vec2(worldW, 0.0))
	groundFix := box2d.MakeB2FixtureDef()
	groundFix.Shape = groundShape
	groundFix.Friction = 0.9
	t.ground.CreateFixtureFromDef(&groundFix)

	// Blocks, one of each colour per level, jittered horizontally so
	// that episodes do not all begin from the same rendered image
	jitter := t.starter.Start()
	centerX := worldW / 2.0

	t.blocks = make(map[jenga.Action]*box2d.B2Body, jenga.NumActions())
	t.homes = make(map[jenga.Action]box2d.B2Vec2, jenga.NumActions())
	for level := 0; level < jenga.MaxLevel; level++ {
		for c := 0; c < jenga.BlocksPerLevel; c++ {
			action := jenga.Action{Level: level, Color: jenga.ColorOf(c)}

			x := centerX + (float64(c)-1.0)*(BlockW+BlockGap) +
				jitter.AtVec(level*jenga.BlocksPerLevel+c)
			y := BlockH/2.0 + float64(level)*BlockH

			blockDef := box2d.NewB2BodyDef()
			blockDef.Type = box2d.B2BodyType.B2_dynamicBody
			blockDef.Position = box2d.MakeB2Vec2(x, y)
			body := t.world.CreateBody(blockDef)

			blockShape := box2d.NewB2PolygonShape()
			blockShape.SetAsBox(BlockW/2.0, BlockH/2.0)

			blockFix := box2d.MakeB2FixtureDef()
			blockFix.Shape = blockShape
			blockFix.Density = 1.0
			blockFix.Friction = 0.9
			blockFix.Restitution = 0.0
			body.CreateFixtureFromDef(&blockFix)

			t.blocks[action] = body
			t.homes[action] = box2d.MakeB2Vec2(x, y)
		}
	}

	t.settle()

	t.taken = make(map[jenga.Action]bool)
	t.stability = t.measureStability()
	t.prevStability = nil
	t.fallen = false
	t.stepNumber = 0

	obs := vision.State(t.render())
	return timestep.New(timestep.First, 0, obs, 0), nil
}

// Step removes the block named by action, lets the tower settle, and
// returns the resulting timestep. The reward compares the stability
// before and after the removal; the first removal of an episode has no
// previous measurement to compare against.
func (t *Tower) Step(action jenga.Action) (timestep.TimeStep, bool, error) {
	if !action.Valid() {
		return timestep.TimeStep{}, false, fmt.Errorf("step: illegal "+
			"action %v", action)
	}
	if t.taken[action] {
		return timestep.TimeStep{}, false, fmt.Errorf("step: block %v "+
			"was already removed", action)
	}

	t.world.DestroyBody(t.blocks[action])
	delete(t.blocks, action)
	t.taken[action] = true

	t.settle()

	previous := t.prevStability
	current := t.measureStability()
	t.fallen = t.checkFallen()

	reward := jenga.CalculateReward(action, t.fallen, previous, current)

	t.stability = current
	t.prevStability = &current
	t.stepNumber++

	stepType := timestep.Mid
	if t.fallen || len(t.blocks) == 0 ||
		(t.stepLimit > 0 && t.stepNumber >= t.stepLimit) {
		stepType = timestep.Last
	}

	obs := vision.State(t.render())
	step := timestep.New(stepType, reward, obs, t.stepNumber)
	return step, step.Last(), nil
}

// settle advances the physics simulation until transients from the
// last change have died down.
func (t *Tower) settle() {
	for i := 0; i < SettleSteps; i++ {
		t.world.Step(1.0/FPS, velocityIterations, positionIterations)
	}
}

// measureStability returns the mean drift of the remaining blocks from
// their home positions. A perfectly stacked tower measures zero and
// larger values mean a more precarious tower.
func (t *Tower) measureStability() float64 {
	if len(t.blocks) == 0 {
		return 0.0
	}

	total := 0.0
	for action, body := range t.blocks {
		home := t.homes[action]
		pos := body.GetPosition()
		total += math.Abs(pos.X-home.X) + BlockH*math.Abs(body.GetAngle())
	}
	return total / float64(len(t.blocks))
}

// checkFallen returns whether any remaining block has slid off its
// home position or dropped below its home level.
func (t *Tower) checkFallen() bool {
	for action, body := range t.blocks {
		home := t.homes[action]
		pos := body.GetPosition()
		if math.Abs(pos.X-home.X) > fallenSlide {
			return true
		}
		if pos.Y < home.Y-fallenDrop {
			return true
		}
	}
	return false
}

// TakenActions returns the set of blocks removed so far this episode.
func (t *Tower) TakenActions() map[jenga.Action]bool {
	return t.taken
}

// Stability returns the last measured tower stability.
func (t *Tower) Stability() float64 {
	return t.stability
}

// Fallen returns whether the tower has collapsed.
func (t *Tower) Fallen() bool {
	return t.fallen
}

// ObservationSize returns the number of features in the rendered and
// preprocessed tower observation.
func (t *Tower) ObservationSize() int {
	return vision.Features
}

// RemainingBlocks returns the number of blocks still standing.
func (t *Tower) RemainingBlocks() int {
	return len(t.blocks)
}

// Interface compliance
var _ environment.Environment = (*Tower)(nil)
