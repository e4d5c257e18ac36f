// Package config loads the process-wide dispatch defaults from the
// environment. A .env file is honored when present. Values here are the
// outermost fallback: per-call options and per-scope overrides win.
package config

import (
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Timeout is the default deadline applied to every dispatch attempt.
	Timeout time.Duration `env:"LUMO_TIMEOUT" envDefault:"10s"`

	// Retries is the default number of additional attempts after a
	// non-success or transient failure. Retries+1 attempts total.
	Retries int `env:"LUMO_RETRIES" envDefault:"0"`

	// RetryDelay is the fixed delay between attempts.
	RetryDelay time.Duration `env:"LUMO_RETRY_DELAY" envDefault:"250ms"`

	// SSREnabled selects local dispatch (true) vs network dispatch (false)
	// when no scope or call option says otherwise.
	SSREnabled bool `env:"LUMO_SSR" envDefault:"false"`

	// Origin resolves site-absolute targets ("/path") when no scope
	// provides one, e.g. "https://example.com".
	Origin string `env:"LUMO_ORIGIN"`
}

var (
	loadOnce sync.Once
	loaded   Config
	loadErr  error
)

// Load parses the environment once and caches the result for the process
// lifetime. A missing .env file is not an error.
func Load() (Config, error) {
	loadOnce.Do(func() {
		_ = godotenv.Load()
		loaded, loadErr = env.ParseAs[Config]()
	})
	return loaded, loadErr
}

// MustLoad is Load for startup paths.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Default returns the compiled-in defaults without consulting the
// environment. Useful for tests and embedded use.
func Default() Config {
	return Config{
		Timeout:    10 * time.Second,
		Retries:    0,
		RetryDelay: 250 * time.Millisecond,
	}
}
