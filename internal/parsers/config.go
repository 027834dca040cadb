package parsers

import (
	"fmt"
	"regexp"
)

// Field names accepted as targets in a bank file column mapping.
const (
	FieldAccount   = "Account"
	FieldDate      = "Date"
	FieldAmount    = "Amount"
	FieldReference = "Reference"
	FieldBalance   = "Balance"
	FieldCategory  = "Category"
)

// BankFileConfig describes how to read one bank's CSV export. Column
// binding is a declarative mapping from transaction field to source
// column header; fields without an entry bind to a column with the
// field's own name.
type BankFileConfig struct {
	// Name identifies the bank format in logs and errors.
	Name string

	// ColumnMap maps a transaction field name to the bank's column
	// header for it.
	ColumnMap map[string]string

	// SkipLines is the number of leading lines before the header row.
	// Some banks prepend current-balance summary lines.
	SkipLines int

	// AccountFromFilename extracts the account identifier from the
	// file name when the export has no account column. The first
	// capture group is the account.
	AccountFromFilename *regexp.Regexp

	// Delimiter is the CSV field separator.
	Delimiter rune
}

// DefaultBankFileConfig returns a configuration for a plain export with
// self-describing column headers.
func DefaultBankFileConfig() *BankFileConfig {
	return &BankFileConfig{
		Name:      "Standard",
		ColumnMap: map[string]string{},
		Delimiter: ',',
	}
}

// Validate checks the configuration for invalid values.
func (c *BankFileConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("bank file config requires a name")
	}

	if c.SkipLines < 0 {
		return fmt.Errorf("skip lines cannot be negative: %d", c.SkipLines)
	}

	for field := range c.ColumnMap {
		switch field {
		case FieldAccount, FieldDate, FieldAmount, FieldReference, FieldBalance, FieldCategory:
		default:
			return fmt.Errorf("unknown column mapping target: %s", field)
		}
	}

	return nil
}

// sourceColumn resolves the bank's column header for a transaction field.
func (c *BankFileConfig) sourceColumn(field string) string {
	if source, ok := c.ColumnMap[field]; ok {
		return source
	}
	return field
}
