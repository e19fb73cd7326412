package lambda

import (
	"errors"
	"fmt"

	"github.com/joeshaw/envdecode"
)

// Config holds handler settings loaded from the environment.
type Config struct {
	// Revision is reported in every response. ENV: REVISION
	Revision string `env:"REVISION,default=unknown"`
	// Fingerprint selects the digest for blob fingerprints in logs. ENV: PARAM_FINGERPRINT
	Fingerprint FingerprintAlgo `env:"PARAM_FINGERPRINT,default=sha1"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	cfg = cfg.withDefaults()
	if !IsValidFingerprintAlgo(cfg.Fingerprint) {
		return cfg, fmt.Errorf("load config: unknown fingerprint algorithm %q", cfg.Fingerprint)
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	if c.Revision == "" {
		c.Revision = "unknown"
	}
	if c.Fingerprint == "" {
		c.Fingerprint = FingerprintSHA1
	}
	return c
}
