// Package parsers reads and writes the cashbook ledger and the CSV
// exports banks produce. The core engines exchange plain transaction
// sequences; everything file-shaped lives here.
package parsers

import (
	"encoding/csv"
	"os"

	"cashbook-import-service/internal/models"
	"cashbook-import-service/pkg/errors"
)

// cashbookHeader is the fixed column layout of the cashbook CSV.
var cashbookHeader = []string{"Account", "Date", "Amount", "Reference", "Balance", "Category", "Details", "Receipt"}

const cashbookDateFormat = "2006-01-02"

// ReadCashbook loads the persisted ledger. A missing file yields an
// empty sequence so a first import starts a fresh cashbook.
func ReadCashbook(path string) ([]*models.Transaction, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.FileError(errors.CodeFilePermission, path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, path, 0, "malformed CSV", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	columns := make(map[string]int)
	for i, name := range rows[0] {
		columns[name] = i
	}
	for _, name := range cashbookHeader[:5] {
		if _, ok := columns[name]; !ok {
			return nil, errors.ParseError(errors.CodeMissingColumn, path, 1, name, nil)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var transactions []*models.Transaction
	for line, row := range rows[1:] {
		t, err := models.CreateTransactionFromCSV(
			cell(row, "Account"), cell(row, "Date"), cell(row, "Amount"),
			cell(row, "Reference"), cell(row, "Balance"))
		if err != nil {
			return nil, errors.ParseError(errors.CodeInvalidData, path, line+2, err.Error(), err)
		}

		t.Category = cell(row, "Category")
		t.Details = cell(row, "Details")
		t.Receipt = cell(row, "Receipt")
		transactions = append(transactions, t)
	}

	return transactions, nil
}

// WriteCashbook persists the ledger, replacing any previous contents.
func WriteCashbook(path string, transactions []*models.Transaction) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(cashbookHeader); err != nil {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}

	for _, t := range transactions {
		row := []string{
			t.Account,
			t.Date.Format(cashbookDateFormat),
			t.Amount.StringFixed(2),
			t.Reference,
			t.Balance.StringFixed(2),
			t.Category,
			t.Details,
			t.Receipt,
		}
		if err := writer.Write(row); err != nil {
			return errors.FileError(errors.CodeFilePermission, path, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}

	return nil
}
