package constant

// Upstream hosts of the embed chain.
const (
	EmbedHost  = "vidsrc-embed.ru"
	PlayerHost = "cloudnestra.com"
	StreamHost = "thrumbleandjaxon.com"
)

// Local routes served by the side-car.
const (
	RouteExtract     = "/extract"
	RouteStream      = "/api/stream"
	RouteProxyStream = "/api/proxy-stream"
	RouteHealth      = "/health"
	RouteLogs        = "/api/logs"
)

// MIME types used by the HTTP front.
const (
	MimeMpegURL     = "application/vnd.apple.mpegurl"
	MimeOctetStream = "application/octet-stream"
	MimeJSON        = "application/json"
)

// DefaultAddr is the loopback address the side-car binds to unless configured otherwise.
const DefaultAddr = "127.0.0.1:4000"
