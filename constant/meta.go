// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Streamio is the canonical application identifier used for filesystem paths and CLI branding.
	Streamio = "streamio"

	// Version is the current application semantic version string.
	Version = "0.1.0"
)

// Build metadata, overridden at link time via -ldflags.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

// User agents sent upstream. Scrape hops and manifest fetches present a Linux desktop Chrome,
// segment passthrough presents a Windows desktop Chrome.
const (
	UserAgentLinux   = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"
	UserAgentWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)
