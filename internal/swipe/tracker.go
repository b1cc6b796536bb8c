package swipe

import "time"

// VelocityWindow is how far back GestureTracker looks when estimating release
// velocity.
const VelocityWindow = 100 * time.Millisecond

type sample struct {
	dx, dy float64
	at     time.Time
}

// GestureTracker accumulates the samples of one drag. It is not safe for
// concurrent use.
type GestureTracker struct {
	classifier *Classifier
	samples    []sample
	active     bool
}

// NewGestureTracker returns a tracker that reports live directions using c.
func NewGestureTracker(c *Classifier) *GestureTracker {
	return &GestureTracker{classifier: c}
}

// Begin starts a new gesture at t, discarding any previous one.
func (g *GestureTracker) Begin(t time.Time) {
	g.samples = append(g.samples[:0], sample{at: t})
	g.active = true
}

// Active reports whether a gesture is in progress.
func (g *GestureTracker) Active() bool {
	return g.active
}

// Move records the cumulative displacement at t and returns the live
// direction. Moves outside a gesture are ignored.
func (g *GestureTracker) Move(dx, dy float64, t time.Time) Direction {
	if !g.active {
		return DirectionNeutral
	}
	g.samples = append(g.samples, sample{dx: dx, dy: dy, at: t})
	g.trim(t)
	return g.classifier.LiveDirection(dx)
}

// Displacement returns the latest cumulative displacement.
func (g *GestureTracker) Displacement() (dx, dy float64) {
	if len(g.samples) == 0 {
		return 0, 0
	}
	last := g.samples[len(g.samples)-1]
	return last.dx, last.dy
}

// Release ends the gesture at t and returns its final displacement and the
// velocity over the last VelocityWindow. A pointer that rested longer than the
// window before release has zero velocity.
func (g *GestureTracker) Release(t time.Time) Release {
	if !g.active {
		return Release{}
	}
	g.active = false

	last := g.samples[len(g.samples)-1]
	r := Release{DX: last.dx, DY: last.dy}

	cutoff := t.Add(-VelocityWindow)
	first := -1
	for i, s := range g.samples {
		if !s.at.Before(cutoff) {
			first = i
			break
		}
	}
	if first < 0 {
		return r
	}
	oldest := g.samples[first]
	elapsed := t.Sub(oldest.at).Seconds()
	if elapsed <= 0 {
		return r
	}
	r.VX = (last.dx - oldest.dx) / elapsed
	r.VY = (last.dy - oldest.dy) / elapsed
	return r
}

// trim drops samples that can no longer fall inside the velocity window.
// One sample older than the window is kept as the anchor for the next move.
func (g *GestureTracker) trim(now time.Time) {
	cutoff := now.Add(-VelocityWindow)
	drop := 0
	for drop < len(g.samples)-1 && g.samples[drop+1].at.Before(cutoff) {
		drop++
	}
	if drop > 0 {
		g.samples = append(g.samples[:0], g.samples[drop:]...)
	}
}
