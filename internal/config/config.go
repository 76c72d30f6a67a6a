// ABOUTME: JSON configuration with defaults for pedal, timing and paths
// ABOUTME: Loads from the XDG config dir, falling back to defaults per field
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pedalscribe/pedalscribe/internal/pedal"
)

// Factory defaults match the common USB transcription pedal.
const (
	DefaultVendorID  HexID = 0x0911
	DefaultProductID HexID = 0x1844

	DefaultLeftCode   uint16 = 288
	DefaultRightCode  uint16 = 289
	DefaultMiddleCode uint16 = 290
)

// HexID is a USB vendor or product id serialized as the four-digit
// hex string operators see in lsusb output.
type HexID uint16

func (h HexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("%04x", uint16(h)))
}

func (h *HexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return fmt.Errorf("parsing hex id %q: %w", s, err)
	}
	*h = HexID(v)
	return nil
}

// PedalID is one vendor/product candidate in priority order.
type PedalID struct {
	Vendor  HexID `json:"vendor_id"`
	Product HexID `json:"product_id"`
}

type Config struct {
	// Pedals is the priority-ordered candidate list; DevicePath is
	// an optional explicit fallback tried after all identities.
	Pedals     []PedalID `json:"pedals"`
	DevicePath string    `json:"device_path,omitempty"`

	LeftCode   uint16 `json:"left_code"`
	RightCode  uint16 `json:"right_code"`
	MiddleCode uint16 `json:"middle_code"`

	RewindSeconds      float64 `json:"rewind_seconds"`
	ForwardSeconds     float64 `json:"forward_seconds"`
	HoldIntervalMs     int     `json:"hold_interval_ms"`
	StartRewindSeconds float64 `json:"start_rewind_seconds"`

	Speeds     []float64 `json:"speeds"`
	ArchiveDir string    `json:"archive_dir"`
	OpenDir    string    `json:"open_dir"`
}

func Default() Config {
	return Config{
		Pedals:             []PedalID{{Vendor: DefaultVendorID, Product: DefaultProductID}},
		LeftCode:           DefaultLeftCode,
		RightCode:          DefaultRightCode,
		MiddleCode:         DefaultMiddleCode,
		RewindSeconds:      3,
		ForwardSeconds:     3,
		HoldIntervalMs:     500,
		StartRewindSeconds: 1,
		Speeds:             []float64{0.75, 1.0, 1.25, 1.5},
		ArchiveDir:         "archive",
		OpenDir:            ".",
	}
}

// Load reads the config file at the default path. A missing file is
// not an error: defaults are returned and saved best-effort so the
// operator has a file to edit.
func Load() (Config, error) {
	path := Path()
	cfg, err := LoadFrom(path)
	if os.IsNotExist(err) {
		cfg = Default()
		_ = cfg.SaveTo(path)
		return cfg, nil
	}
	return cfg, err
}

// LoadFrom reads and validates a specific config file, overlaying the
// defaults so absent fields keep their default values.
func LoadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), err
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.validate()
	return cfg, nil
}

// validate falls back per field rather than rejecting the whole file.
func (c *Config) validate() {
	def := Default()
	if len(c.Pedals) == 0 {
		c.Pedals = def.Pedals
	}
	if c.RewindSeconds <= 0 {
		c.RewindSeconds = def.RewindSeconds
	}
	if c.ForwardSeconds <= 0 {
		c.ForwardSeconds = def.ForwardSeconds
	}
	if c.HoldIntervalMs <= 0 {
		c.HoldIntervalMs = def.HoldIntervalMs
	}
	if c.StartRewindSeconds <= 0 {
		c.StartRewindSeconds = def.StartRewindSeconds
	}
	if len(c.Speeds) == 0 {
		c.Speeds = def.Speeds
	}
	for _, s := range c.Speeds {
		if s <= 0 {
			c.Speeds = def.Speeds
			break
		}
	}
	if c.ArchiveDir == "" {
		c.ArchiveDir = def.ArchiveDir
	}
	if c.OpenDir == "" {
		c.OpenDir = def.OpenDir
	}
}

func (c Config) Save() error {
	return c.SaveTo(Path())
}

func (c Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Candidates flattens the config into the scanner's priority list:
// identities in listed order, then the explicit path fallback.
func (c Config) Candidates() []pedal.Candidate {
	out := make([]pedal.Candidate, 0, len(c.Pedals)+1)
	for _, p := range c.Pedals {
		out = append(out, pedal.Candidate{Vendor: uint16(p.Vendor), Product: uint16(p.Product)})
	}
	if c.DevicePath != "" {
		out = append(out, pedal.Candidate{Path: c.DevicePath})
	}
	return out
}

// Path returns the config file location under the XDG config dir.
func Path() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, "pedalscribe", "config.json")
}
