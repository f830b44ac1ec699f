package cli

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned for unusable flag combinations.
var ErrInvalidConfig = errors.New("invalid cli config")

// Config holds the options for one CLI run.
type Config struct {
	BaseURL string        // disease.sh origin
	Country string        // country to report on; empty uses the default
	Days    int           // trailing history window
	Timeout time.Duration // per-request upstream timeout, 0 for none
	List    bool          // print the country catalog instead of a report
	Verbose bool          // debug logging
}

// Validate checks the configuration before any request is made.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: url must not be empty", ErrInvalidConfig)
	}
	if c.Days < 1 {
		return fmt.Errorf("%w: days must be at least 1", ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}
