/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package render

import (
	"context"
	"log/slog"
)

// LogRenderer is a headless Renderer that logs a summary of each scene.
type LogRenderer struct {
	Log *slog.Logger
}

func (r LogRenderer) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

func (r LogRenderer) Setup(ctx context.Context) error {
	r.logger().DebugContext(ctx, "renderer setup", slog.String("renderer", "log"))
	return nil
}

func (r LogRenderer) Render(ctx context.Context, sc Scene, f Frame) error {
	r.logger().InfoContext(ctx, "scene",
		slog.Uint64("seq", sc.Seq),
		slog.Int("boxes", len(sc.Boxes)),
		slog.Int("visible", len(sc.Visible())),
		slog.Int("furniture", len(f.Furniture)),
		slog.Float64("yaw", f.View.Yaw),
		slog.Float64("pitch", f.View.Pitch),
		slog.Float64("distance", f.View.Distance),
	)
	return nil
}
