// Package reconciler merges a newly imported bank export into an
// existing cashbook. The two sequences cover an overlapping date
// window, but the bank may have reordered transactions, re-dated them,
// or reworded their references since the previous export; the merge
// absorbs those changes while carrying the user's categories and notes
// forward onto the replacement records.
package reconciler

import (
	"time"

	"cashbook-import-service/internal/matcher"
	"cashbook-import-service/internal/models"
	"cashbook-import-service/internal/sorter"
	"cashbook-import-service/pkg/errors"
)

// Merger reconciles imported transactions against an existing ledger.
type Merger struct {
	matcher *matcher.Matcher
}

// NewMerger creates a Merger using the given matching tolerances,
// falling back to the defaults when config is nil.
func NewMerger(config *matcher.Config) *Merger {
	return &Merger{matcher: matcher.New(config)}
}

// Merge reconciles imported transactions into the existing sequence and
// returns the combined, balance-chain-sorted result. Imported records
// are grouped by account in order of first appearance and each group is
// reconciled independently; accounts absent from the import pass
// through untouched. The existing sequence is never mutated; imported
// records are cloned before their annotation fields are filled in.
//
// Returns an insufficient-overlap error when an account's import shares
// no identical transaction with the existing records, and a
// broken-balance-chain error when the combined result cannot be
// ordered.
func (m *Merger) Merge(existing, imported []*models.Transaction) ([]*models.Transaction, error) {
	result := existing

	for _, account := range accountsInOrder(imported) {
		importedForAccount, _ := models.Partition(imported, account)

		merged, err := m.mergeAccount(result, account, importedForAccount)
		if err != nil {
			return nil, err
		}
		result = merged
	}

	return sorter.Sort(result)
}

// Merge reconciles with the default matching tolerances.
func Merge(existing, imported []*models.Transaction) ([]*models.Transaction, error) {
	return NewMerger(nil).Merge(existing, imported)
}

// mergeAccount reconciles one account's imported records against the
// full existing sequence.
func (m *Merger) mergeAccount(existing []*models.Transaction, account string, imported []*models.Transaction) ([]*models.Transaction, error) {
	existingForAccount, otherAccounts := models.Partition(existing, account)

	if len(existingForAccount) == 0 {
		// First import for this account; nothing to reconcile against.
		return append(append([]*models.Transaction{}, existing...), cloneAll(imported)...), nil
	}

	pivot := m.findPivot(existingForAccount, imported)
	if pivot < 0 {
		return nil, errors.InsufficientOverlap(account)
	}

	// Everything before the pivot is assumed already present.
	retained := cloneAll(imported[pivot:])

	firstDate, lastDate := dateSpan(retained)

	// Existing records inside the import's date window are replaced by
	// the import; their annotations are carried over below.
	var kept, replaced []*models.Transaction
	for _, t := range existingForAccount {
		if withinSpan(t.Date, firstDate, lastDate) {
			replaced = append(replaced, t)
		} else {
			kept = append(kept, t)
		}
	}

	for _, imp := range retained {
		m.carryAnnotations(imp, replaced)
	}

	result := make([]*models.Transaction, 0, len(kept)+len(retained)+len(otherAccounts))
	result = append(result, kept...)
	result = append(result, retained...)
	result = append(result, otherAccounts...)
	return result, nil
}

// findPivot locates the first imported record provably identical to an
// existing record: same date, account, amount and balance, with
// matching references. Its index anchors the overlap window.
func (m *Merger) findPivot(existingForAccount, imported []*models.Transaction) int {
	for i, imp := range imported {
		for _, ex := range existingForAccount {
			if m.matcher.ExactMatch(imp, ex, true) && imp.Balance.Equal(ex.Balance) {
				return i
			}
		}
	}
	return -1
}

// carryAnnotations copies the user-assigned fields from the replaced
// existing record that close-matches the imported one. The imported
// record's own date, reference and balance are kept: that is how a
// bank's re-dating or reference rewording is absorbed without losing
// user metadata. An imported record matching nothing is flagged for
// review.
func (m *Merger) carryAnnotations(imported *models.Transaction, replaced []*models.Transaction) {
	for _, ex := range replaced {
		if m.matcher.CloseMatch(imported, ex) {
			imported.Category = ex.Category
			imported.Details = ex.Details
			imported.Receipt = ex.Receipt
			return
		}
	}

	imported.Details = models.NeedsReview
}

func accountsInOrder(transactions []*models.Transaction) []string {
	seen := make(map[string]bool)
	var accounts []string
	for _, t := range transactions {
		if !seen[t.Account] {
			seen[t.Account] = true
			accounts = append(accounts, t.Account)
		}
	}
	return accounts
}

func cloneAll(transactions []*models.Transaction) []*models.Transaction {
	clones := make([]*models.Transaction, len(transactions))
	for i, t := range transactions {
		clones[i] = t.Clone()
	}
	return clones
}

func dateSpan(transactions []*models.Transaction) (first, last time.Time) {
	first, last = transactions[0].Date, transactions[0].Date
	for _, t := range transactions[1:] {
		if t.Date.Before(first) {
			first = t.Date
		}
		if t.Date.After(last) {
			last = t.Date
		}
	}
	return first, last
}

func withinSpan(date, first, last time.Time) bool {
	return !date.Before(first) && !date.After(last)
}
