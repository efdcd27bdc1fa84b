package redis

import (
	"errors"
	"fmt"
	"time"
)

const defaultKeyPrefix = "chefbot:"

// Config holds the Redis memory module configuration.
type Config struct {
	// Addr is the host:port of the Redis server. Required.
	Addr string `yaml:"addr"`

	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// KeyPrefix namespaces every key written by the store. Defaults to "chefbot:".
	KeyPrefix string `yaml:"key_prefix"`

	// TTL expires idle conversations. Zero keeps them forever.
	TTL time.Duration `yaml:"ttl"`

	// DialTimeout bounds the connection check at provisioning. Defaults to 5s.
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

func (c *Config) defaults() {
	if c.KeyPrefix == "" {
		c.KeyPrefix = defaultKeyPrefix
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("redis: addr is required"))
	}
	if c.DB < 0 {
		errs = append(errs, fmt.Errorf("redis: db must be non-negative, got %d", c.DB))
	}
	if c.TTL < 0 {
		errs = append(errs, fmt.Errorf("redis: ttl must be non-negative, got %s", c.TTL))
	}
	return errors.Join(errs...)
}
