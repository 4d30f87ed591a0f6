package quota

import "time"

// Defaults applied when a configured value is missing or non-positive.
const (
	DefaultLimit           = 10
	DefaultWindow          = time.Hour
	DefaultCleanupInterval = 5 * time.Minute
)

// Config holds the settings for one quota axis pair: a per-identity ceiling
// and an optional global ceiling shared by all identities.
// Embed this in your app config for env parsing with caarlos0/env, using an
// envPrefix per tracker (e.g. QUOTA_GUEST_PLAY_, QUOTA_GENERATION_).
type Config struct {
	// Limit is the per-identity ceiling inside one Window.
	Limit  int           `env:"LIMIT" envDefault:"10"`
	Window time.Duration `env:"WINDOW" envDefault:"1h"`

	// GlobalLimit caps all identities combined inside one GlobalWindow.
	// Zero disables the global axis.
	GlobalLimit  int           `env:"GLOBAL_LIMIT" envDefault:"0"`
	GlobalWindow time.Duration `env:"GLOBAL_WINDOW" envDefault:"1h"`

	// CleanupInterval is how often the janitor sweeps lapsed identity
	// entries. It bounds memory, not enforcement: lapsed entries are
	// already treated as absent before the sweep removes them.
	// Negative disables the janitor (useful in tests).
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"5m"`
}

// Normalize returns a copy with invalid values clamped to the built-in
// defaults, per the degrade-instead-of-fail configuration policy.
func (c Config) Normalize() Config {
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.GlobalLimit < 0 {
		c.GlobalLimit = 0
	}
	if c.GlobalLimit > 0 && c.GlobalWindow <= 0 {
		c.GlobalWindow = DefaultWindow
	}
	if c.CleanupInterval == 0 {
		c.CleanupInterval = DefaultCleanupInterval
	}
	return c
}
