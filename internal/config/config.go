/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"roomplanner/internal/camera"
	"roomplanner/internal/coords"
	applog "roomplanner/internal/log"
	"roomplanner/internal/scene"
	"roomplanner/internal/undo"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	DataDir string `yaml:"data_dir"`
	Owner   string `yaml:"owner"`
}

type SceneConfig struct {
	PixelsPerMeter float64 `yaml:"pixels_per_meter"`
	HistoryDepth   int     `yaml:"history_depth"`
	// CoalesceMs merges commits closer together than this into one undo step; 0 disables.
	CoalesceMs int `yaml:"coalesce_ms"`
}

type CameraConfig struct {
	DefaultDistance float64 `yaml:"default_distance"`
	MinDistance     float64 `yaml:"min_distance"`
	MaxDistance     float64 `yaml:"max_distance"`
	DefaultPitch    float64 `yaml:"default_pitch"`
}

type RenderConfig struct {
	InitTimeoutMs int `yaml:"init_timeout_ms"`
}

type BackendConfig struct {
	Addr string `yaml:"addr"`
	// DatabaseURL is a postgres:// DSN without password; the password lives in the OS keychain.
	DatabaseURL string `yaml:"database_url"`
	UsePostgres bool   `yaml:"use_postgres"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Scene         SceneConfig   `yaml:"scene"`
	Camera        CameraConfig  `yaml:"camera"`
	Render        RenderConfig  `yaml:"render"`
	Backend       BackendConfig `yaml:"backend"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	cam := camera.DefaultConfig()
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{DataDir: defaultDataDir(), Owner: ""},
		Scene:         SceneConfig{PixelsPerMeter: 100, HistoryDepth: undo.DefaultMaxDepth},
		Camera: CameraConfig{
			DefaultDistance: cam.DefaultDistance,
			MinDistance:     cam.MinDistance,
			MaxDistance:     cam.MaxDistance,
			DefaultPitch:    cam.DefaultPitch,
		},
		Render:  RenderConfig{InitTimeoutMs: 5000},
		Backend: BackendConfig{Addr: "127.0.0.1:8080", DatabaseURL: "", UsePostgres: false},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath     = "RP_CONFIG"
	EnvDataDir        = "RP_DATA_DIR"
	EnvOwner          = "RP_OWNER"
	EnvPixelsPerMeter = "RP_PIXELS_PER_METER"
	EnvHistoryDepth   = "RP_HISTORY_DEPTH"
	EnvRenderTimeout  = "RP_RENDER_INIT_TIMEOUT_MS"
	EnvBackendAddr    = "RP_ADDR"
	EnvDatabaseURL    = "RP_DATABASE_URL"
	EnvUsePostgres    = "RP_USE_POSTGRES"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "RP_LOG_LEVEL"
	EnvLogFormat = "RP_LOG_FORMAT"
	EnvLogSource = "RP_LOG_SOURCE"
	EnvLogFile   = "RP_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService    = "RoomPlanner"
	keyringDBPassword = "database_password"
)

// tokenStore abstracts keyring, so we can stub in tests.
var tokenStore TokenStore = osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements TokenStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

func appDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "RoomPlanner")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "RoomPlanner")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "roomplanner")
	}
	if base == "" || base == "RoomPlanner" || base == filepath.Join(".config", "roomplanner") {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

func defaultDataDir() string {
	dir, err := appDir()
	if err != nil {
		return "roomplanner-data"
	}
	return filepath.Join(dir, "designs")
}

// ConfigPath returns the per-user config file path. RP_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	dir, err := appDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// It also loads the database password from keyring (not kept inside the struct; returned separately).
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	pw, _ := tokenStore.Get(keyringService, keyringDBPassword)
	return cfg, pw, nil
}

// Save writes the user config YAML and persists the password into OS keyring (if non-empty).
func Save(cfg AppConfig, password string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if password != "" {
		if err := tokenStore.Set(keyringService, keyringDBPassword, password); err != nil {
			return fmt.Errorf("store database password: %w", err)
		}
	}
	return nil
}

// ForgetPassword removes the stored database password.
func ForgetPassword() error {
	err := tokenStore.Delete(keyringService, keyringDBPassword)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.General.DataDir) != "" {
		dst.General.DataDir = strings.TrimSpace(src.General.DataDir)
	}
	if src.General.Owner != "" {
		dst.General.Owner = src.General.Owner
	}
	if src.Scene.PixelsPerMeter > 0 {
		dst.Scene.PixelsPerMeter = src.Scene.PixelsPerMeter
	}
	if src.Scene.HistoryDepth != 0 {
		dst.Scene.HistoryDepth = src.Scene.HistoryDepth
	}
	if src.Scene.CoalesceMs > 0 {
		dst.Scene.CoalesceMs = src.Scene.CoalesceMs
	}
	// camera: zero means "keep default"
	if src.Camera.DefaultDistance > 0 {
		dst.Camera.DefaultDistance = src.Camera.DefaultDistance
	}
	if src.Camera.MinDistance > 0 {
		dst.Camera.MinDistance = src.Camera.MinDistance
	}
	if src.Camera.MaxDistance > 0 {
		dst.Camera.MaxDistance = src.Camera.MaxDistance
	}
	if src.Camera.DefaultPitch != 0 {
		dst.Camera.DefaultPitch = src.Camera.DefaultPitch
	}
	if src.Render.InitTimeoutMs > 0 {
		dst.Render.InitTimeoutMs = src.Render.InitTimeoutMs
	}
	if src.Backend.Addr != "" {
		dst.Backend.Addr = src.Backend.Addr
	}
	if src.Backend.DatabaseURL != "" {
		dst.Backend.DatabaseURL = src.Backend.DatabaseURL
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Backend.UsePostgres = src.Backend.UsePostgres
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.General.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOwner)); v != "" {
		cfg.General.Owner = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPixelsPerMeter)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Scene.PixelsPerMeter = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryDepth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scene.HistoryDepth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvRenderTimeout)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Render.InitTimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendAddr)); v != "" {
		cfg.Backend.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDatabaseURL)); v != "" {
		cfg.Backend.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvUsePostgres)); v != "" {
		cfg.Backend.UsePostgres = parseBool(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"general.data_dir":       EnvDataDir,
	"general.owner":          EnvOwner,
	"scene.pixels_per_meter": EnvPixelsPerMeter,
	"scene.history_depth":    EnvHistoryDepth,
	"render.init_timeout_ms": EnvRenderTimeout,
	"backend.addr":           EnvBackendAddr,
	"backend.database_url":   EnvDatabaseURL,
	"backend.use_postgres":   EnvUsePostgres,
	"logging.level":          EnvLogLevel,
	"logging.format":         EnvLogFormat,
	"logging.source":         EnvLogSource,
	"logging.file":           EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// InitTimeout is the bound on waiting for the render context to come up.
func (r RenderConfig) InitTimeout() time.Duration {
	if r.InitTimeoutMs <= 0 {
		return time.Duration(Defaults().Render.InitTimeoutMs) * time.Millisecond
	}
	return time.Duration(r.InitTimeoutMs) * time.Millisecond
}

// DSN returns DatabaseURL with password filled in when the URL carries none.
func (b BackendConfig) DSN(password string) (string, error) {
	if strings.TrimSpace(b.DatabaseURL) == "" {
		return "", errors.New("backend.database_url is not set")
	}
	u, err := url.Parse(b.DatabaseURL)
	if err != nil {
		return "", fmt.Errorf("parse database_url: %w", err)
	}
	if password != "" && u.User != nil {
		if _, has := u.User.Password(); !has {
			u.User = url.UserPassword(u.User.Username(), password)
		}
	}
	return u.String(), nil
}

// SceneConfig converts the scene and camera sections into controller settings.
func (c AppConfig) SceneConfig() scene.Config {
	sc := scene.DefaultConfig()
	sc.History = undo.Config{MaxDepth: c.Scene.HistoryDepth, MinInterval: time.Duration(c.Scene.CoalesceMs) * time.Millisecond}
	sc.Camera.DefaultDistance = c.Camera.DefaultDistance
	sc.Camera.MinDistance = c.Camera.MinDistance
	sc.Camera.MaxDistance = c.Camera.MaxDistance
	sc.Camera.DefaultPitch = c.Camera.DefaultPitch
	return sc
}

// Mapper is the editor pixel scale.
func (c AppConfig) Mapper() coords.Mapper { return coords.New(c.Scene.PixelsPerMeter) }

func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}
