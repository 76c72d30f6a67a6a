// ABOUTME: Version constants for the pedalscribe binary
// ABOUTME: Referenced by the -version flag and log banner
package version

const (
	// Version is the semantic version of this build.
	Version = "0.1.0"

	// Product is the user-facing application name.
	Product = "PedalScribe"
)
