package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NeedsReview is the sentinel written to a transaction's Details field
// when a merge keeps an imported record that matches no existing one.
// Category is left empty so category backfill still runs on the record.
const NeedsReview = "NEEDS REVIEW"

// Transaction represents one cashbook ledger entry. Account, Date,
// Amount, Reference and Balance come from the bank verbatim; Category,
// Details and Receipt are user- or model-assigned and are the only
// fields a merge may carry over from an old record to a new one.
type Transaction struct {
	Account   string          `json:"account" csv:"Account"`
	Date      time.Time       `json:"date" csv:"Date"`
	Amount    decimal.Decimal `json:"amount" csv:"Amount"`
	Reference string          `json:"reference" csv:"Reference"`
	Balance   decimal.Decimal `json:"balance" csv:"Balance"`
	Category  string          `json:"category,omitempty" csv:"Category"`
	Details   string          `json:"details,omitempty" csv:"Details"`
	Receipt   string          `json:"receipt,omitempty" csv:"Receipt"`
}

// NewTransaction creates a new Transaction instance.
func NewTransaction(account string, date time.Time, amount decimal.Decimal, reference string, balance decimal.Decimal) *Transaction {
	return &Transaction{
		Account:   account,
		Date:      date,
		Amount:    amount,
		Reference: reference,
		Balance:   balance,
	}
}

// Validate performs basic validation on the Transaction.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Account) == "" {
		return fmt.Errorf("transaction account cannot be empty")
	}

	if t.Date.IsZero() {
		return fmt.Errorf("transaction date cannot be zero")
	}

	return nil
}

// String returns a string representation of the Transaction.
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{Account: %s, Date: %s, Amount: %s, Reference: %q, Balance: %s, Category: %s}",
		t.Account, t.Date.Format("2006-01-02"), t.Amount.String(), t.Reference, t.Balance.String(), t.Category)
}

// Clone returns a copy of the transaction. Merges clone imported
// records before annotating them so callers never observe a
// half-updated record.
func (t *Transaction) Clone() *Transaction {
	clone := *t
	return &clone
}

// SameDay reports whether both transactions carry the same calendar date.
func (t *Transaction) SameDay(other *Transaction) bool {
	return t.Date.Year() == other.Date.Year() && t.Date.YearDay() == other.Date.YearDay()
}

// HasCategory reports whether a category has been assigned.
func (t *Transaction) HasCategory() bool {
	return strings.TrimSpace(t.Category) != ""
}

// OpeningBalance returns the account balance immediately before this
// transaction was applied, rounded to cents.
func (t *Transaction) OpeningBalance() decimal.Decimal {
	return t.Balance.Sub(t.Amount).Round(2)
}

// Equals compares two Transaction instances field by field.
func (t *Transaction) Equals(other *Transaction) bool {
	if other == nil {
		return false
	}

	return t.Account == other.Account &&
		t.SameDay(other) &&
		t.Amount.Equal(other.Amount) &&
		t.Reference == other.Reference &&
		t.Balance.Equal(other.Balance) &&
		t.Category == other.Category &&
		t.Details == other.Details &&
		t.Receipt == other.Receipt
}

// Accounts returns the distinct account identifiers present in the
// sequence, in lexicographic order.
func Accounts(transactions []*Transaction) []string {
	seen := make(map[string]bool)
	var accounts []string

	for _, t := range transactions {
		if !seen[t.Account] {
			seen[t.Account] = true
			accounts = append(accounts, t.Account)
		}
	}

	sort.Strings(accounts)
	return accounts
}

// Partition splits the sequence into the records belonging to account
// and the records belonging to every other account, preserving order.
func Partition(transactions []*Transaction, account string) (matching, others []*Transaction) {
	for _, t := range transactions {
		if t.Account == account {
			matching = append(matching, t)
		} else {
			others = append(others, t)
		}
	}
	return matching, others
}

// ParseDecimalFromString parses a monetary value from string, tolerating
// currency symbols and thousand separators.
func ParseDecimalFromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}

// ParseDateWithFormats attempts to parse a date from string using the
// formats commonly seen in bank exports.
func ParseDateWithFormats(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	formats := []string{
		"2006-01-02",
		"02/01/2006",
		"2006/01/02",
		"02-01-2006",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05",
		"Jan 2, 2006",
		"2 Jan 2006",
	}

	var lastErr error
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date '%s': %w", s, lastErr)
}

// CreateTransactionFromCSV creates a Transaction from raw CSV field values.
func CreateTransactionFromCSV(account, dateStr, amountStr, reference, balanceStr string) (*Transaction, error) {
	date, err := ParseDateWithFormats(dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction date in CSV: %w", err)
	}

	amount, err := ParseDecimalFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount in CSV: %w", err)
	}

	balance := decimal.Zero
	if strings.TrimSpace(balanceStr) != "" {
		balance, err = ParseDecimalFromString(balanceStr)
		if err != nil {
			return nil, fmt.Errorf("invalid balance in CSV: %w", err)
		}
	}

	transaction := NewTransaction(strings.TrimSpace(account), date, amount, strings.TrimSpace(reference), balance)

	if err := transaction.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transaction data: %w", err)
	}

	return transaction, nil
}
