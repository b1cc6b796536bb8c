package swipe

// Card feedback geometry, in display units.
const (
	rotationSpan    = 400
	maxRotation     = 0.3
	overlayDistance = 200
)

// Feedback is the visual state of a card being dragged.
type Feedback struct {
	Direction     Direction `json:"direction"`
	Rotation      float64   `json:"rotation"`
	KeepOpacity   float64   `json:"keepOpacity"`
	DeleteOpacity float64   `json:"deleteOpacity"`
}

// Feedback returns the card rotation (radians) and overlay opacities for a
// horizontal displacement.
func (c *Classifier) Feedback(dx float64) Feedback {
	return Feedback{
		Direction:     c.LiveDirection(dx),
		Rotation:      dx / rotationSpan * maxRotation,
		KeepOpacity:   clamp01(dx / overlayDistance),
		DeleteOpacity: clamp01(-dx / overlayDistance),
	}
}

func clamp01(v float64) float64 {
	return max(0, min(v, 1))
}
