/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package camera tracks the orbit view of the 3D scene: yaw around the
// vertical axis, pitch above the floor plane and the viewing distance.
package camera

import (
	"math"

	"roomplanner/internal/coords"
	"roomplanner/internal/vector"
)

// Config holds the defaults and limits. Distances are world units.
type Config struct {
	DefaultDistance float64
	MinDistance     float64
	MaxDistance     float64
	DefaultPitch    float64
	MinPitch        float64
	MaxPitch        float64
	FieldOfView     float64 // vertical, degrees
}

// DefaultConfig matches the editor: distance 1000 in [100, 3000], pitch 30 in [-60, 60].
func DefaultConfig() Config {
	return Config{
		DefaultDistance: 1000,
		MinDistance:     100,
		MaxDistance:     3000,
		DefaultPitch:    30,
		MinPitch:        -60,
		MaxPitch:        60,
		FieldOfView:     30,
	}
}

// normalized fills zero fields from DefaultConfig and orders the limits.
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.MinDistance <= 0 {
		c.MinDistance = d.MinDistance
	}
	if c.MaxDistance <= 0 {
		c.MaxDistance = d.MaxDistance
	}
	if c.MaxDistance < c.MinDistance {
		c.MinDistance, c.MaxDistance = c.MaxDistance, c.MinDistance
	}
	if c.DefaultDistance <= 0 {
		c.DefaultDistance = d.DefaultDistance
	}
	c.DefaultDistance = clamp(c.DefaultDistance, c.MinDistance, c.MaxDistance)
	if c.MinPitch == 0 && c.MaxPitch == 0 {
		c.MinPitch, c.MaxPitch = d.MinPitch, d.MaxPitch
	}
	if c.DefaultPitch == 0 {
		c.DefaultPitch = d.DefaultPitch
	}
	c.DefaultPitch = clamp(c.DefaultPitch, c.MinPitch, c.MaxPitch)
	if c.FieldOfView <= 0 || c.FieldOfView >= 180 {
		c.FieldOfView = d.FieldOfView
	}
	return c
}

// State is the mutable camera. It is not safe for concurrent use; readers on
// other goroutines take a View instead.
type State struct {
	cfg      Config
	yaw      float64
	pitch    float64
	distance float64
}

// New returns a camera at its reset position.
func New(cfg Config) *State {
	s := &State{cfg: cfg.normalized()}
	s.Reset()
	return s
}

func (s *State) Config() Config       { return s.cfg }
func (s *State) Yaw() float64         { return s.yaw }
func (s *State) Pitch() float64       { return s.pitch }
func (s *State) Distance() float64    { return s.distance }
func (s *State) MinDistance() float64 { return s.cfg.MinDistance }
func (s *State) MaxDistance() float64 { return s.cfg.MaxDistance }

// Rotate turns the view around the vertical axis. Yaw is kept in [0, 360).
func (s *State) Rotate(deltaYaw float64) {
	if !finite(deltaYaw) {
		return
	}
	s.yaw = coords.NormalizeDegrees(s.yaw + deltaYaw)
}

// Tilt changes the pitch, saturating at the configured limits.
func (s *State) Tilt(deltaPitch float64) {
	if !finite(deltaPitch) {
		return
	}
	s.pitch = clamp(s.pitch+deltaPitch, s.cfg.MinPitch, s.cfg.MaxPitch)
}

// Zoom scales the distance by factor (<1 moves closer), saturating at the
// configured limits. The desktop editor this replaces rejected a zoom step
// whose result fell outside the limits and left the distance unchanged; here
// the step is clamped instead, so repeated zooming always reaches the limit.
// Non-positive or non-finite factors are ignored.
func (s *State) Zoom(factor float64) {
	if !finite(factor) || factor <= 0 {
		return
	}
	s.distance = clamp(s.distance*factor, s.cfg.MinDistance, s.cfg.MaxDistance)
}

// Reset restores yaw 0, the default pitch and the default distance.
func (s *State) Reset() {
	s.yaw = 0
	s.pitch = s.cfg.DefaultPitch
	s.distance = s.cfg.DefaultDistance
}

// View is an immutable copy of the camera with its derived transform.
type View struct {
	Yaw         float64
	Pitch       float64
	Distance    float64
	FieldOfView float64
	// Rotation maps world to camera orientation: pitch about X after yaw about Y.
	Rotation vector.Mat3
	// Eye is the camera position in world space.
	Eye vector.Vec3
}

// View derives the current view transform.
func (s *State) View() View {
	rot := vector.RotateX(vector.Radians(s.pitch)).Mul(vector.RotateY(vector.Radians(s.yaw)))
	return View{
		Yaw:         s.yaw,
		Pitch:       s.pitch,
		Distance:    s.distance,
		FieldOfView: s.cfg.FieldOfView,
		Rotation:    rot,
		Eye:         rot.Transpose().Apply(vector.Vec3{Z: -s.distance}),
	}
}

// ToCamera maps a world point into camera space: +Z is depth in front of the
// eye, +X right and +Y down on screen.
func (v View) ToCamera(p vector.Vec3) vector.Vec3 {
	c := v.Rotation.Apply(p)
	c.Z += v.Distance
	return c
}

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
