// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Server Binding - these keys control where the side-car listens.
const (
	ServerHost = "server.host"
	ServerPort = "server.port"
)

// Upstream HTTP - these keys tune the outbound client used for scraping, manifests and segments.
const (
	HTTPTimeout        = "http.timeout"
	HTTPTLSFingerprint = "http.tls_fingerprint"
)

// Upstream Hosts - these keys name the hosts of the embed chain and the stream host substituted into decoded URLs.
const (
	UpstreamEmbedHost  = "upstream.embed_host"
	UpstreamPlayerHost = "upstream.player_host"
	UpstreamStreamHost = "upstream.stream_host"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment.
const (
	CliColored   = "cli.colored"
	IconsVariant = "icons.variant"
)
