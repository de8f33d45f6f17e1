// internal/workers/communication/send-agent-message/config.go
package sendagentmessage

import (
	"fmt"
	"time"
)

type Config struct {
	EmailEnabled   bool
	SMSEnabled     bool
	DefaultSubject string
	Timeout        time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		EmailEnabled:   true,
		SMSEnabled:     true,
		DefaultSubject: DefaultSubject,
		Timeout:        30 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
