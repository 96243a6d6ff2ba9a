package orchestrator

import (
	"time"

	"github.com/rs/zerolog"

	"synthd/internal/device"
	"synthd/internal/runtime"
	"synthd/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultGenerateTimeout = 10 * time.Minute
	defaultLoadTimeout     = 10 * time.Minute
)

// Config encapsulates all tunables for Orchestrator construction.
type Config struct {
	// Catalog is the scanned models directory; load sources resolve
	// against it before passing through verbatim.
	Catalog []types.CatalogModel
	// Runtimes is the capability table populated at startup.
	Runtimes *runtime.Table
	// Accelerator backs the device context; nil means CPU-only.
	Accelerator device.Accelerator
	// Publisher receives lifecycle events. Defaults to a no-op.
	Publisher EventPublisher
	// Logger for orchestrator logging. The zero value is disabled.
	Logger zerolog.Logger
	// GenerateTimeout bounds one generation call.
	GenerateTimeout time.Duration
	// LoadTimeout bounds one execution-object construction.
	LoadTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Runtimes == nil {
		c.Runtimes = runtime.NewTable()
	}
	if c.Publisher == nil {
		c.Publisher = noopPublisher{}
	}
	if c.GenerateTimeout <= 0 {
		c.GenerateTimeout = defaultGenerateTimeout
	}
	if c.LoadTimeout <= 0 {
		c.LoadTimeout = defaultLoadTimeout
	}
	return c
}
