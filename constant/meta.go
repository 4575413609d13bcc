// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Mangasan is the canonical application identifier used for filesystem paths and CLI branding.
	Mangasan = "mangasan"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent identifies this library to the MangaDex API, as required by their usage policy.
	UserAgent = "mangasan (https://github.com/mangasan-dev/mangasan " + Version + ")"
)

// AsciiArtLogo is the application banner shown on the root help screen.
const AsciiArtLogo = `
  ___ ___    ____    ____    ____   ____   _____  ____    ____
 |   |   |  /    |  |    \  /    | /    | /     ||    \  |    |
 | _   _ | |  o  |  |  _  ||   __||  o  ||   __||  _  |  |  o  |
 |  \_/  | |     |  |  |  ||  |  ||     ||  |_  |  |  |  |     |
 |   |   | |  _  |  |  |  ||  |_ ||  _  ||   _] |  |  |  |  _  |
 |   |   | |  |  |  |  |  ||     ||  |  ||  |   |  |  |  |  |  |
 |___|___| |__|__|  |__|__||___,_||__|__||__|   |__|__|  |__|__|
`
