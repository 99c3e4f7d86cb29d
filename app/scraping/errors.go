package scraping

import "fmt"

// ValidationError rejects a malformed scrape request before any work is done.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ComplianceError rejects a request that violates the platform policy for the
// user, such as a disallowed scraping type.
type ComplianceError struct {
	Reason string
}

func (e *ComplianceError) Error() string {
	return e.Reason
}

// ConfigurationError signals that per-user settings could not be loaded or
// created. Nothing was scraped.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("scraping configuration unavailable: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
