/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"roomplanner/internal/domain"
)

// Client is a minimal HTTP client for the design API served by NewServer.
type Client struct {
	BaseURL string
	client  *http.Client
}

// NewClient creates a new backend client. baseURL may include a trailing slash; it will be normalized.
func NewClient(baseURL string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// APIError is a non-2xx response.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("server %s %s: %d", e.Method, e.Path, e.Status)
}

// Unwrap maps 404 onto ErrNotFound.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Method: method, Path: u.Path, Status: resp.StatusCode}
		var env struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&env) == nil {
			apiErr.Message = env.Error
		}
		return apiErr
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// ListDesigns returns the stored designs, optionally filtered by owner.
func (c *Client) ListDesigns(ctx context.Context, owner string) ([]DesignSummary, error) {
	path := "/api/designs"
	if owner != "" {
		path += "?owner=" + url.QueryEscape(owner)
	}
	var list []DesignSummary
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetDesign fetches one design.
func (c *Client) GetDesign(ctx context.Context, id int) (domain.Design, error) {
	var d domain.Design
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/designs/%d", id), nil, &d); err != nil {
		return domain.Design{}, err
	}
	return d, nil
}

// PutDesign creates d when its id is zero and replaces it otherwise. d is
// updated with the stored record.
func (c *Client) PutDesign(ctx context.Context, d *domain.Design) error {
	if d == nil {
		return errors.New("nil design")
	}
	method, path := http.MethodPost, "/api/designs"
	if d.ID > 0 {
		method, path = http.MethodPut, fmt.Sprintf("/api/designs/%d", d.ID)
	}
	return c.doJSON(ctx, method, path, d, d)
}

func (c *Client) DeleteDesign(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/designs/%d", id), nil, nil)
}

// SceneQuery selects the camera and surfaces for Scene.
type SceneQuery struct {
	Yaw, Pitch float64
	Zoom       float64 // 0 leaves the distance alone
	Show, Hide []string
	// Viewport requests the projected wireframe when both sides are positive.
	Width, Height int
}

// Scene fetches the 3D scene of a design.
func (c *Client) Scene(ctx context.Context, id int, q SceneQuery) (*SceneResponse, error) {
	v := url.Values{}
	if q.Yaw != 0 {
		v.Set("yaw", fmt.Sprint(q.Yaw))
	}
	if q.Pitch != 0 {
		v.Set("pitch", fmt.Sprint(q.Pitch))
	}
	if q.Zoom != 0 {
		v.Set("zoom", fmt.Sprint(q.Zoom))
	}
	if len(q.Show) > 0 {
		v.Set("show", strings.Join(q.Show, ","))
	}
	if len(q.Hide) > 0 {
		v.Set("hide", strings.Join(q.Hide, ","))
	}
	if q.Width > 0 && q.Height > 0 {
		v.Set("viewport", fmt.Sprintf("%dx%d", q.Width, q.Height))
	}
	path := fmt.Sprintf("/api/designs/%d/scene", id)
	if enc := v.Encode(); enc != "" {
		path += "?" + enc
	}
	var resp SceneResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
