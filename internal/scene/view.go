/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package scene

import (
	"roomplanner/internal/camera"
	"roomplanner/internal/visibility"
)

// Camera and visibility changes redraw but never touch history or the dirty flag.

func (c *Controller) RotateCamera(deltaYaw float64) {
	c.cam.Rotate(deltaYaw)
	c.publish()
}

func (c *Controller) TiltCamera(deltaPitch float64) {
	c.cam.Tilt(deltaPitch)
	c.publish()
}

func (c *Controller) ZoomCamera(factor float64) {
	c.cam.Zoom(factor)
	c.publish()
}

func (c *Controller) ResetCamera() {
	c.cam.Reset()
	c.publish()
}

func (c *Controller) Camera() camera.View { return c.cam.View() }

// SetWallVisibility accepts names like "ceiling" or "frontWall". Unknown names
// are ignored and reported as false.
func (c *Controller) SetWallVisibility(name string, visible bool) bool {
	if !c.vis.SetByName(name, visible) {
		c.log.Debug("unknown surface", "name", name)
		return false
	}
	c.publish()
	return true
}

func (c *Controller) IsWallVisible(name string) bool { return c.vis.IsVisibleByName(name) }

func (c *Controller) SetSurfaceVisible(s visibility.Surface, visible bool) {
	c.vis.Set(s, visible)
	c.publish()
}

func (c *Controller) Surfaces() visibility.Flags { return c.vis.Snapshot() }
