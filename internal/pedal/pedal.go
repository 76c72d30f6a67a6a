// ABOUTME: Pedal device types and priority-ordered discovery
// ABOUTME: Pure matching logic over an enumerator snapshot, no threading
package pedal

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDevice means no candidate matched the enumerated devices.
	ErrNoDevice = errors.New("pedal: no matching device found")
	// ErrUnsupportedPlatform is returned by the device layer on
	// systems without evdev.
	ErrUnsupportedPlatform = errors.New("pedal: input devices not supported on this platform")
)

// Raw event values as reported by the kernel.
const (
	ValueRelease    = 0
	ValuePress      = 1
	ValueAutorepeat = 2
)

// Candidate is one entry in the priority-ordered pedal list: either a
// vendor/product identity or an explicit device path. Path entries
// have Path set and ignore the identity fields.
type Candidate struct {
	Vendor  uint16
	Product uint16
	Path    string
}

// DeviceInfo is one enumerated input device.
type DeviceInfo struct {
	Path    string
	Name    string
	Vendor  uint16
	Product uint16
}

// Event is a raw key transition from the connected pedal.
type Event struct {
	Code  uint16
	Value int32
}

// StatusKind enumerates scanner connection states.
type StatusKind int

const (
	StatusNotStarted StatusKind = iota
	StatusScanning
	StatusConnected
	StatusError
)

// Status is one connection-state broadcast from the scanner.
type Status struct {
	Kind    StatusKind
	Name    string
	Path    string
	Vendor  uint16
	Product uint16
	Err     string
}

func (s Status) String() string {
	switch s.Kind {
	case StatusScanning:
		return "Scanning for pedal..."
	case StatusConnected:
		return fmt.Sprintf("Connected: %s (%04x:%04x) %s", s.Name, s.Vendor, s.Product, s.Path)
	case StatusError:
		return "Error: " + s.Err
	default:
		return "Not started"
	}
}

// Device is an open input device delivering key events.
type Device interface {
	Name() string
	Path() string
	Identity() (vendor, product uint16)
	// NextKeyEvents blocks for the next batch of key events. Any
	// error is treated as a disconnect.
	NextKeyEvents() ([]Event, error)
	Close() error
}

// Enumerator lists and opens input devices.
type Enumerator interface {
	Devices() ([]DeviceInfo, error)
	Open(path string) (Device, error)
}

// Discover tries each candidate in list order against one enumeration
// snapshot and opens the first match. Identity candidates accept the
// first device whose vendor and product both match; path candidates
// accept if the path opens. No further candidates are tried after a
// success.
func Discover(enum Enumerator, candidates []Candidate) (Device, error) {
	infos, err := enum.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating input devices: %w", err)
	}

	for _, c := range candidates {
		if c.Path != "" {
			if dev, err := enum.Open(c.Path); err == nil {
				return dev, nil
			}
			continue
		}
		for _, info := range infos {
			if info.Vendor != c.Vendor || info.Product != c.Product {
				continue
			}
			// Fresh open by path; the snapshot holds no handles.
			if dev, err := enum.Open(info.Path); err == nil {
				return dev, nil
			}
		}
	}

	return nil, ErrNoDevice
}
