//go:build !linux

// ABOUTME: Stub enumerator for platforms without evdev
// ABOUTME: The scanner keeps retrying but every enumeration fails cleanly
package pedal

type stubEnumerator struct{}

// NewEnumerator returns the platform input-device enumerator.
func NewEnumerator() Enumerator { return stubEnumerator{} }

func (stubEnumerator) Devices() ([]DeviceInfo, error) {
	return nil, ErrUnsupportedPlatform
}

func (stubEnumerator) Open(path string) (Device, error) {
	return nil, ErrUnsupportedPlatform
}
