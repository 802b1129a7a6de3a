package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"
	_ "time/tzdata" // business time zone without system tzdata
)

// Validate rejects settings the gateway cannot start with
func (c *Config) Validate() error {
	var problems []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}

	key, err := hex.DecodeString(c.Link.SecretKey)
	if err != nil || len(key) != 32 {
		problems = append(problems, errors.New("link.secretKey must be 64 hex characters"))
	}
	if u, err := url.Parse(c.Link.PublicBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Errorf("link.publicBaseUrl %q is not an absolute URL", c.Link.PublicBaseURL))
	}

	durations := map[string]time.Duration{
		"transaction.ttl":       c.Transaction.TTL,
		"reaper.interval":       c.Reaper.Interval,
		"reaper.leaseTtl":       c.Reaper.LeaseTTL,
		"reconciler.interval":   c.Reconciler.Interval,
		"database.queryTimeout": c.Database.QueryTimeout,
	}
	for name, d := range durations {
		if d <= 0 {
			problems = append(problems, fmt.Errorf("%s must be positive", name))
		}
	}

	if c.Transaction.UniqueMin < 1 || c.Transaction.UniqueMax < c.Transaction.UniqueMin {
		problems = append(problems, fmt.Errorf("transaction unique range [%d, %d] is invalid",
			c.Transaction.UniqueMin, c.Transaction.UniqueMax))
	}
	if _, err := time.LoadLocation(c.Transaction.TimeZone); err != nil {
		problems = append(problems, fmt.Errorf("transaction.timeZone: %w", err))
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		problems = append(problems, errors.New("kafka.brokers is required when kafka is enabled"))
	}

	return errors.Join(problems...)
}
