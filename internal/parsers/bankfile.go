package parsers

import (
	"bufio"
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cashbook-import-service/internal/models"
	"cashbook-import-service/pkg/errors"
)

// ReadBankFiles expands a glob pattern, reads every matching export
// with the given configuration and returns the combined transactions
// ordered by date. The file parts keep their within-file order for
// same-date ties.
func ReadBankFiles(pattern string, config *BankFileConfig) ([]*models.Transaction, error) {
	if config == nil {
		config = DefaultBankFileConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(config.Name, err)
	}

	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileNotFound, pattern, err)
	}
	if len(paths) == 0 {
		return nil, errors.FileError(errors.CodeFileNotFound, pattern, nil)
	}
	sort.Strings(paths)

	var combined []*models.Transaction
	for _, path := range paths {
		transactions, err := ReadBankFile(path, config)
		if err != nil {
			return nil, err
		}
		combined = append(combined, transactions...)
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Date.Before(combined[j].Date)
	})

	return combined, nil
}

// ReadBankFile reads a single bank export. Bank-supplied categories are
// discarded so the cashbook's own predictions are used instead, and
// exports listed newest-first are reversed into ascending date order.
func ReadBankFile(path string, config *BankFileConfig) ([]*models.Transaction, error) {
	if config == nil {
		config = DefaultBankFileConfig()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileNotFound, path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, path, 0, "cannot read file", err)
	}

	if len(lines) <= config.SkipLines {
		return nil, errors.ParseError(errors.CodeInvalidFormat, path, 0, "file has no header row", nil)
	}
	lines = lines[config.SkipLines:]

	reader := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	if config.Delimiter != 0 {
		reader.Comma = config.Delimiter
	}
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, path, 0, "malformed CSV", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	columns := make(map[string]int)
	for i, name := range rows[0] {
		columns[strings.TrimSpace(name)] = i
	}

	cell := func(row []string, field string) string {
		i, ok := columns[config.sourceColumn(field)]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	// Account can come from a column or from the file name.
	filenameAccount := ""
	if config.AccountFromFilename != nil {
		match := config.AccountFromFilename.FindStringSubmatch(filepath.Base(path))
		if len(match) > 1 {
			filenameAccount = match[1]
		}
	}

	var transactions []*models.Transaction
	for line, row := range rows[1:] {
		account := cell(row, FieldAccount)
		if account == "" {
			account = filenameAccount
		}

		t, err := models.CreateTransactionFromCSV(
			account, cell(row, FieldDate), cell(row, FieldAmount),
			cell(row, FieldReference), cell(row, FieldBalance))
		if err != nil {
			return nil, errors.ParseError(errors.CodeInvalidData, path, line+config.SkipLines+2, err.Error(), err)
		}

		transactions = append(transactions, t)
	}

	// Newest-first exports are reversed into ascending date order.
	if len(transactions) > 1 && transactions[0].Date.After(transactions[len(transactions)-1].Date) {
		for i, j := 0, len(transactions)-1; i < j; i, j = i+1, j-1 {
			transactions[i], transactions[j] = transactions[j], transactions[i]
		}
	}

	return transactions, nil
}
