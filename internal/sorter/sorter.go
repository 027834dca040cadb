// Package sorter restores correct order within each account's
// transaction set. Some banks list same-day transactions in an order
// that contradicts the running balances they report; the balances, not
// the list positions, are ground truth, so ordering is recovered by
// chaining each transaction onto the balance its predecessor left
// behind.
package sorter

import (
	"sort"

	"cashbook-import-service/internal/models"
	"cashbook-import-service/pkg/errors"

	"github.com/shopspring/decimal"
)

// Sort returns the transactions ordered so that, within every account,
// each transaction's balance equals its predecessor's balance plus its
// own amount. Accounts are processed in lexicographic order and the
// combined result is presented in (date, account) order; the
// presentation sort is stable and never disturbs the within-account
// chain order. The input is not mutated.
func Sort(transactions []*models.Transaction) ([]*models.Transaction, error) {
	sorted := make([]*models.Transaction, 0, len(transactions))

	for _, account := range models.Accounts(transactions) {
		accountTransactions, _ := models.Partition(transactions, account)

		chain, err := chainAccount(account, accountTransactions)
		if err != nil {
			return nil, err
		}

		sorted = append(sorted, chain...)
	}

	// Cosmetic interleaving of accounts by date. Stable, so same-date
	// ties within an account keep their balance-verified order.
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.SameDay(b) {
			return a.Date.Before(b.Date)
		}
		return a.Account < b.Account
	})

	return sorted, nil
}

// chainAccount orders one account's transactions by balance linkage.
func chainAccount(account string, transactions []*models.Transaction) ([]*models.Transaction, error) {
	if len(transactions) == 0 {
		return nil, nil
	}

	running, err := startingBalance(account, transactions)
	if err != nil {
		return nil, err
	}

	remaining := make([]*models.Transaction, len(transactions))
	copy(remaining, transactions)

	chain := make([]*models.Transaction, 0, len(transactions))
	for len(remaining) > 0 {
		// Zero-amount transactions leave the running balance unchanged,
		// so they must chain before any transaction that advances it;
		// otherwise the advancing one strands them.
		next := -1
		for i, t := range remaining {
			if !t.OpeningBalance().Equal(running) {
				continue
			}
			if t.Amount.IsZero() {
				next = i
				break
			}
			if next < 0 {
				next = i
			}
		}

		if next < 0 {
			return nil, errors.BrokenBalanceChain(account, running, len(remaining))
		}

		t := remaining[next]
		chain = append(chain, t)
		remaining = append(remaining[:next], remaining[next+1:]...)
		running = running.Add(t.Amount).Round(2)
	}

	return chain, nil
}

// startingBalance identifies the balance the account held before its
// first transaction. Among the transactions dated on the earliest day,
// the chain head is the one whose opening balance matches no other
// same-day transaction's closing balance; every other same-day
// transaction has a predecessor on that day.
func startingBalance(account string, transactions []*models.Transaction) (decimal.Decimal, error) {
	first := transactions[0]
	for _, t := range transactions[1:] {
		if t.Date.Before(first.Date) {
			first = t
		}
	}

	var firstDay []*models.Transaction
	for _, t := range transactions {
		if t.SameDay(first) {
			firstDay = append(firstDay, t)
		}
	}

	for _, candidate := range firstDay {
		opening := candidate.OpeningBalance()

		hasPredecessor := false
		for _, other := range firstDay {
			if other != candidate && other.Balance.Equal(opening) {
				hasPredecessor = true
				break
			}
		}

		if !hasPredecessor {
			return opening, nil
		}
	}

	return decimal.Zero, errors.BrokenBalanceChain(account, decimal.Zero, len(transactions)).
		WithSuggestion("the earliest day's balances are ambiguous or cyclic; correct the account's opening records")
}
