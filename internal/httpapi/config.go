package httpapi

import "synthd/pkg/types"

// maxBodyBytes controls the maximum allowed request body size for JSON
// endpoints. Generation requests can carry base64 input images, so the
// default is generous.
var maxBodyBytes int64 = 16 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 16 << 20
		return
	}
	maxBodyBytes = n
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}

// hwCollector supplies the latest hardware sample for GET /hw; nil leaves
// the endpoint reporting unavailability.
var hwCollector func() (types.HWSnapshot, bool)

// SetHWCollector installs the hardware sample source.
func SetHWCollector(fn func() (types.HWSnapshot, bool)) { hwCollector = fn }
