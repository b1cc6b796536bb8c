// Package swipe turns continuous drag input into review decisions.
//
// The Classifier is a pure function of displacement and velocity. Presentation
// layers that only observe pointer positions feed a GestureTracker, which
// estimates the release velocity for them.
package swipe

// Direction is the advisory drag direction shown while the gesture is live.
type Direction string

const (
	DirectionNeutral Direction = "neutral"
	DirectionRight   Direction = "right"
	DirectionLeft    Direction = "left"
)

// Decision is the outcome of a released gesture.
type Decision string

const (
	DecisionKeep   Decision = "keep"
	DecisionDelete Decision = "delete"
	DecisionCancel Decision = "cancel"
)

// Reference thresholds, in display units and display units per second.
const (
	DefaultLiveThreshold     = 60
	DefaultCommitThreshold   = 120
	DefaultVelocityThreshold = 800
)

// Config holds the classifier thresholds. Zero fields fall back to the
// defaults.
type Config struct {
	LiveThreshold     float64 `json:"liveThreshold" mapstructure:"live_threshold"`
	CommitThreshold   float64 `json:"commitThreshold" mapstructure:"commit_threshold"`
	VelocityThreshold float64 `json:"velocityThreshold" mapstructure:"velocity_threshold"`
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{
		LiveThreshold:     DefaultLiveThreshold,
		CommitThreshold:   DefaultCommitThreshold,
		VelocityThreshold: DefaultVelocityThreshold,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.LiveThreshold <= 0 {
		c.LiveThreshold = def.LiveThreshold
	}
	if c.CommitThreshold <= 0 {
		c.CommitThreshold = def.CommitThreshold
	}
	if c.VelocityThreshold <= 0 {
		c.VelocityThreshold = def.VelocityThreshold
	}
	return c
}

// Release is the final state of a gesture: cumulative displacement from the
// gesture start and velocity at the moment of release.
type Release struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// Classifier maps gestures to directions and decisions.
type Classifier struct {
	cfg Config
}

// NewClassifier returns a classifier using cfg.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg.withDefaults()}
}

// Config returns the effective thresholds.
func (c *Classifier) Config() Config {
	return c.cfg
}

// LiveDirection returns the direction to highlight for the current horizontal
// displacement. It never commits anything.
func (c *Classifier) LiveDirection(dx float64) Direction {
	switch {
	case dx > c.cfg.LiveThreshold:
		return DirectionRight
	case dx < -c.cfg.LiveThreshold:
		return DirectionLeft
	default:
		return DirectionNeutral
	}
}

// Commit decides a released gesture from its horizontal displacement and
// velocity. Displacement and velocity qualify independently. Keep is checked
// first.
func (c *Classifier) Commit(dx, vx float64) Decision {
	if dx > c.cfg.CommitThreshold || vx > c.cfg.VelocityThreshold {
		return DecisionKeep
	}
	if dx < -c.cfg.CommitThreshold || vx < -c.cfg.VelocityThreshold {
		return DecisionDelete
	}
	return DecisionCancel
}

// Classify is Commit for a Release.
func (c *Classifier) Classify(r Release) Decision {
	return c.Commit(r.DX, r.VX)
}
