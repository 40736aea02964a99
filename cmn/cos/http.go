package cos

// HTTP header/content-type constants, named the way this codebase's http
// helpers (e.g. ais/s3's WriteErr) reference them, trimmed to the handful
// the relay actually emits.
const (
	HdrContentType   = "Content-Type"
	HdrContentLength = "Content-Length"

	ContentText = "text/plain; charset=utf-8"
	ContentHTML = "text/html; charset=utf-8"
	ContentJS   = "application/javascript; charset=utf-8"
	ContentICO  = "image/x-icon"
)
