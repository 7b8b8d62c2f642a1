package bus

import "time"

// Config carries the environment-tunable bus settings, loaded with
// core/config.
//
// Example:
//
//	var cfg bus.Config
//	config.MustLoad(&cfg)
//	b := bus.NewFromConfig(cfg)
type Config struct {
	MetricsEnabled     bool          `env:"EVENTBUS_METRICS_ENABLED" envDefault:"true"`
	DefaultWaitTimeout time.Duration `env:"EVENTBUS_WAIT_TIMEOUT" envDefault:"0"`
}

// NewFromConfig creates a bus from environment-derived settings. Explicit
// options are applied after the config-derived ones and win on conflict.
func NewFromConfig(cfg Config, opts ...Option) *Bus {
	base := []Option{
		WithMetrics(cfg.MetricsEnabled),
		WithDefaultWaitTimeout(cfg.DefaultWaitTimeout),
	}
	return New(append(base, opts...)...)
}
