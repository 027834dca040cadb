// Package errors defines the structured error type shared by the
// cashbook import pipeline. Both reconciliation failures the engine can
// produce are named conditions so the CLI can explain them to the user
// rather than printing a generic failure.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Category groups errors by the stage of the pipeline that raised them.
type Category string

const (
	CategoryFile           Category = "file"
	CategoryParse          Category = "parse"
	CategoryValidation     Category = "validation"
	CategoryConfiguration  Category = "configuration"
	CategoryReconciliation Category = "reconciliation"
	CategoryInternal       Category = "internal"
)

// Code identifies a specific error condition within a category.
type Code string

const (
	// File errors
	CodeFileNotFound   Code = "file_not_found"
	CodeFilePermission Code = "file_permission"

	// Parse errors
	CodeInvalidFormat Code = "invalid_format"
	CodeMissingColumn Code = "missing_column"
	CodeInvalidData   Code = "invalid_data"

	// Validation errors
	CodeInvalidAmount Code = "invalid_amount"
	CodeInvalidDate   Code = "invalid_date"
	CodeMissingField  Code = "missing_field"

	// Configuration errors
	CodeInvalidConfig Code = "invalid_config"

	// Reconciliation errors. Both are structural integrity failures in
	// the ledger data, never retried, always surfaced to the caller.
	CodeInsufficientOverlap Code = "insufficient_overlap"
	CodeBrokenBalanceChain  Code = "broken_balance_chain"
	CodeNoTrainingData      Code = "no_training_data"

	// Internal errors
	CodeUnexpectedError Code = "unexpected_error"
)

// LedgerError is the base error type for all application errors.
type LedgerError struct {
	Category   Category               `json:"category"`
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace errors.StackTrace      `json:"-"`
}

// Error implements the error interface.
func (e *LedgerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *LedgerError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the process exit code appropriate for the error.
func (e *LedgerError) ExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryReconciliation, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error.
func (e *LedgerError) WithContext(key string, value interface{}) *LedgerError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error.
func (e *LedgerError) WithSuggestion(suggestion string) *LedgerError {
	e.Suggestion = suggestion
	return e
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New creates a new LedgerError.
func New(category Category, code Code, message string) *LedgerError {
	return &LedgerError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with LedgerError context.
func Wrap(err error, category Category, code Code, message string) *LedgerError {
	if err == nil {
		return nil
	}

	return &LedgerError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// InsufficientOverlap reports that no pivot transaction could be found
// between the existing and imported sequences for an account. The user
// should supply an import covering a wider date window.
func InsufficientOverlap(account string) *LedgerError {
	return New(CategoryReconciliation, CodeInsufficientOverlap,
		fmt.Sprintf("cannot import new transactions for account %s: there needs to be more overlap between existing and imported transactions", account)).
		WithSuggestion("export a wider date range from the bank so the two sequences share at least one identical transaction").
		WithContext("account", account)
}

// BrokenBalanceChain reports that an account's transactions cannot be
// fully ordered by their running balances. lastBalance is the last
// balance that chained successfully.
func BrokenBalanceChain(account string, lastBalance decimal.Decimal, remaining int) *LedgerError {
	return New(CategoryReconciliation, CodeBrokenBalanceChain,
		fmt.Sprintf("cannot fully order transactions for account %s: no transaction continues the balance chain from %s (%d unsorted)",
			account, lastBalance.String(), remaining)).
		WithSuggestion("check the account's records for missing or duplicated transactions").
		WithContext("account", account).
		WithContext("last_balance", lastBalance.String()).
		WithContext("remaining", remaining)
}

// FileError creates a file-related error.
func FileError(code Code, path string, err error) *LedgerError {
	var message string
	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
	default:
		message = fmt.Sprintf("file error: %s", path)
	}

	result := New(CategoryFile, code, message)
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	}
	return result.WithContext("file_path", path)
}

// ParseError creates a parsing-related error with file position context.
func ParseError(code Code, file string, line int, detail string, err error) *LedgerError {
	message := fmt.Sprintf("parse error in %s at line %d: %s", file, line, detail)
	if code == CodeMissingColumn {
		message = fmt.Sprintf("missing required column in %s: %s", file, detail)
	}

	result := New(CategoryParse, code, message)
	if err != nil {
		result = Wrap(err, CategoryParse, code, message)
	}
	return result.
		WithContext("file", file).
		WithContext("line", line)
}

// ConfigurationError creates a configuration-related error.
func ConfigurationError(setting string, err error) *LedgerError {
	message := fmt.Sprintf("invalid configuration: %s", setting)

	result := New(CategoryConfiguration, CodeInvalidConfig, message)
	if err != nil {
		result = Wrap(err, CategoryConfiguration, CodeInvalidConfig, message)
	}
	return result.WithContext("setting", setting)
}

// AsLedgerError extracts a LedgerError from an error chain.
func AsLedgerError(err error) (*LedgerError, bool) {
	var ledgerErr *LedgerError
	if errors.As(err, &ledgerErr) {
		return ledgerErr, true
	}
	return nil, false
}

// IsInsufficientOverlap reports whether err is the merge engine's
// designed no-pivot failure.
func IsInsufficientOverlap(err error) bool {
	return hasCode(err, CodeInsufficientOverlap)
}

// IsBrokenBalanceChain reports whether err is the sorter's designed
// incomplete-chain failure.
func IsBrokenBalanceChain(err error) bool {
	return hasCode(err, CodeBrokenBalanceChain)
}

func hasCode(err error, code Code) bool {
	ledgerErr, ok := AsLedgerError(err)
	return ok && ledgerErr.Code == code
}
