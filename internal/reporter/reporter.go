// Package reporter summarizes the outcome of an import run for the
// user: what came in, what was replaced, and which records still need a
// human look.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"cashbook-import-service/internal/models"
)

// Format selects the report output format.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Summary aggregates the result of one import run.
type Summary struct {
	TotalTransactions   int            `json:"total_transactions"`
	ImportedCount       int            `json:"imported_count"`
	ByAccount           map[string]int `json:"by_account"`
	CategoriesPredicted int            `json:"categories_predicted"`
	Uncategorized       int            `json:"uncategorized"`
	NeedsReview         []string       `json:"needs_review,omitempty"`
}

// Build assembles a Summary from the final ledger state. importedCount
// and predictedCount are the counts reported by the merge and backfill
// steps.
func Build(transactions []*models.Transaction, importedCount, predictedCount int) *Summary {
	summary := &Summary{
		TotalTransactions:   len(transactions),
		ImportedCount:       importedCount,
		ByAccount:           make(map[string]int),
		CategoriesPredicted: predictedCount,
	}

	for _, t := range transactions {
		summary.ByAccount[t.Account]++

		if !t.HasCategory() {
			summary.Uncategorized++
		}

		if t.Details == models.NeedsReview {
			summary.NeedsReview = append(summary.NeedsReview, t.String())
		}
	}

	return summary
}

// Write renders the summary in the requested format.
func (s *Summary) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(s)
	default:
		return s.writeConsole(w)
	}
}

func (s *Summary) writeConsole(w io.Writer) error {
	fmt.Fprintf(w, "Import Summary\n")
	fmt.Fprintf(w, "==============\n")
	fmt.Fprintf(w, "Transactions in cashbook: %d\n", s.TotalTransactions)
	fmt.Fprintf(w, "Imported this run:        %d\n", s.ImportedCount)
	fmt.Fprintf(w, "Categories predicted:     %d\n", s.CategoriesPredicted)
	fmt.Fprintf(w, "Still uncategorized:      %d\n", s.Uncategorized)

	accounts := make([]string, 0, len(s.ByAccount))
	for account := range s.ByAccount {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	fmt.Fprintf(w, "\nPer account:\n")
	for _, account := range accounts {
		fmt.Fprintf(w, "  %-16s %d\n", account, s.ByAccount[account])
	}

	if len(s.NeedsReview) > 0 {
		fmt.Fprintf(w, "\nNeeds review (%d):\n", len(s.NeedsReview))
		for _, line := range s.NeedsReview {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	return nil
}
