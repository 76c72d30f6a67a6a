//go:build linux

// ABOUTME: Linux evdev implementation of the device enumerator
// ABOUTME: Wraps holoplot/go-evdev for enumeration, identity and key reads
package pedal

import (
	"fmt"

	"github.com/holoplot/go-evdev"
)

type evdevEnumerator struct{}

// NewEnumerator returns the platform input-device enumerator.
func NewEnumerator() Enumerator { return evdevEnumerator{} }

func (evdevEnumerator) Devices() ([]DeviceInfo, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("listing input devices: %w", err)
	}

	infos := make([]DeviceInfo, 0, len(paths))
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			// Devices we cannot open (permissions, races with
			// hotplug) simply do not appear in the snapshot.
			continue
		}
		id, err := dev.InputID()
		dev.Close()
		if err != nil {
			continue
		}
		infos = append(infos, DeviceInfo{
			Path:    p.Path,
			Name:    p.Name,
			Vendor:  id.Vendor,
			Product: id.Product,
		})
	}
	return infos, nil
}

func (evdevEnumerator) Open(path string) (Device, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	d := &evdevDevice{dev: dev, path: path}
	if name, err := dev.Name(); err == nil {
		d.name = name
	} else {
		d.name = "Unknown"
	}
	if id, err := dev.InputID(); err == nil {
		d.vendor = id.Vendor
		d.product = id.Product
	}
	return d, nil
}

type evdevDevice struct {
	dev     *evdev.InputDevice
	path    string
	name    string
	vendor  uint16
	product uint16
}

func (d *evdevDevice) Name() string { return d.name }
func (d *evdevDevice) Path() string { return d.path }

func (d *evdevDevice) Identity() (uint16, uint16) {
	return d.vendor, d.product
}

// NextKeyEvents blocks until the next key event arrives, skipping
// non-key events (sync reports, misc scancodes) in between.
func (d *evdevDevice) NextKeyEvents() ([]Event, error) {
	for {
		ev, err := d.dev.ReadOne()
		if err != nil {
			return nil, err
		}
		if ev.Type != evdev.EV_KEY {
			continue
		}
		return []Event{{Code: uint16(ev.Code), Value: ev.Value}}, nil
	}
}

func (d *evdevDevice) Close() error {
	return d.dev.Close()
}
