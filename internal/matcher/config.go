package matcher

import "fmt"

// Config holds the tolerances used when deciding whether two
// transaction records denote the same real-world event.
type Config struct {
	// DateToleranceDays is the exclusive upper bound on date drift for
	// a close match. Banks have been seen re-dating transactions up to
	// nine days after the original export.
	DateToleranceDays int

	// MinReferenceOverlap is the inclusive percentage of the first
	// record's reference tokens that must appear in the second
	// record's reference for the similarity test to pass.
	MinReferenceOverlap float64
}

// DefaultConfig returns the canonical matching tolerances.
func DefaultConfig() *Config {
	return &Config{
		DateToleranceDays:   10,
		MinReferenceOverlap: 50,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.DateToleranceDays < 0 {
		return fmt.Errorf("date tolerance cannot be negative: %d", c.DateToleranceDays)
	}

	if c.MinReferenceOverlap < 0 || c.MinReferenceOverlap > 100 {
		return fmt.Errorf("reference overlap must be a percentage between 0 and 100: %v", c.MinReferenceOverlap)
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
