// Package matcher decides whether two transaction records denote the
// same real-world event despite reference rewording and date drift
// introduced by the bank between exports.
package matcher

import (
	"strings"

	"cashbook-import-service/internal/models"
)

// Matcher evaluates match predicates under a set of tolerances.
type Matcher struct {
	Config *Config
}

// New creates a Matcher with the given configuration, falling back to
// the defaults when config is nil.
func New(config *Config) *Matcher {
	if config == nil {
		config = DefaultConfig()
	}
	return &Matcher{Config: config}
}

// ExactMatch reports whether a and b have the same account and amount,
// the same date when useDate is set, and similar references. Used to
// anchor the overlap window between an existing and an imported
// sequence.
func (m *Matcher) ExactMatch(a, b *models.Transaction, useDate bool) bool {
	if a.Account != b.Account {
		return false
	}

	if !a.Amount.Equal(b.Amount) {
		return false
	}

	if useDate && !a.SameDay(b) {
		return false
	}

	return m.referencesSimilar(a.Reference, b.Reference)
}

// CloseMatch is the looser predicate used once an overlap window is
// established: same account and amount, dates within the drift
// tolerance, and similar references. Balance is deliberately ignored
// since the bank recomputes it when it re-dates a transaction.
func (m *Matcher) CloseMatch(a, b *models.Transaction) bool {
	if a.Account != b.Account {
		return false
	}

	if !a.Amount.Equal(b.Amount) {
		return false
	}

	days := a.Date.Sub(b.Date).Hours() / 24
	if days < 0 {
		days = -days
	}
	if days >= float64(m.Config.DateToleranceDays) {
		return false
	}

	return m.referencesSimilar(a.Reference, b.Reference)
}

func (m *Matcher) referencesSimilar(a, b string) bool {
	return ReferenceSimilarity(a, b) >= m.Config.MinReferenceOverlap
}

// ReferenceSimilarity returns the percentage of a's whitespace tokens
// that appear in b. The measure is asymmetric on purpose: it is driven
// by the first argument's token count, so a short re-worded reference
// can still match a longer original. A reference with no tokens scores
// zero and therefore never passes the threshold.
func ReferenceSimilarity(a, b string) float64 {
	aTokens := strings.Fields(a)
	if len(aTokens) == 0 {
		return 0
	}

	bTokens := make(map[string]bool)
	for _, token := range strings.Fields(b) {
		bTokens[token] = true
	}

	matched := 0
	for _, token := range aTokens {
		if bTokens[token] {
			matched++
		}
	}

	return float64(matched) / float64(len(aTokens)) * 100
}

// ExactMatch applies the default tolerances.
func ExactMatch(a, b *models.Transaction, useDate bool) bool {
	return defaultMatcher.ExactMatch(a, b, useDate)
}

// CloseMatch applies the default tolerances.
func CloseMatch(a, b *models.Transaction) bool {
	return defaultMatcher.CloseMatch(a, b)
}

var defaultMatcher = New(nil)
