// Package session tracks the single active scenario, the frame cursor, and
// cumulative usage counters for one user session.
//
// The session is an explicit object passed to operations; there is no
// package-level state. All mutation happens through the transition methods
// below, which never fail: navigation clamps at the boundaries instead.
package session

import "github.com/sandtable-sim/sandtable/internal/scenario"

// Session holds the navigation state for one operator.
type Session struct {
	active      *scenario.Scenario
	frameCursor int

	// Cumulative counters. Loading an archived scenario does not count as
	// generation and leaves both untouched.
	ScenariosGenerated int
	FramesGenerated    int
}

// New returns an empty session.
func New() *Session {
	return &Session{}
}

// SetScenario installs a freshly generated scenario, resets the cursor, and
// bumps the usage counters.
func (s *Session) SetScenario(sc *scenario.Scenario) {
	s.active = sc
	s.frameCursor = 0
	if sc == nil {
		return
	}
	s.ScenariosGenerated++
	s.FramesGenerated += len(sc.Frames)
}

// LoadScenario installs a persisted scenario and resets the cursor without
// touching the counters.
func (s *Session) LoadScenario(sc *scenario.Scenario) {
	s.active = sc
	s.frameCursor = 0
}

// Active returns the current scenario, or nil.
func (s *Session) Active() *scenario.Scenario { return s.active }

// FrameCount returns the number of frames in the active scenario.
func (s *Session) FrameCount() int {
	if s.active == nil {
		return 0
	}
	return len(s.active.Frames)
}

// FrameCursor returns the current frame index.
func (s *Session) FrameCursor() int { return s.frameCursor }

// CurrentFrame returns the frame under the cursor, or nil when no scenario
// is active.
func (s *Session) CurrentFrame() *scenario.Frame {
	if s.active == nil || s.frameCursor < 0 || s.frameCursor >= len(s.active.Frames) {
		return nil
	}
	return &s.active.Frames[s.frameCursor]
}

// AdvanceFrame moves the cursor forward, clamped to the last frame.
func (s *Session) AdvanceFrame() {
	if s.active == nil {
		return
	}
	if s.frameCursor < len(s.active.Frames)-1 {
		s.frameCursor++
	}
}

// RetreatFrame moves the cursor backward, clamped to the first frame.
func (s *Session) RetreatFrame() {
	if s.active == nil {
		return
	}
	if s.frameCursor > 0 {
		s.frameCursor--
	}
}
