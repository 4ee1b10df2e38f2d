package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second
)

// Version is reported by the OpenAPI document and mDNS TXT records.
// Release builds set it with -ldflags "-X .../providers.Version=v1.2.3".
var Version = "dev"
