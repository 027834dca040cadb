// Package config builds parser and matcher configurations for the CLI.
package config

import (
	"fmt"
	"regexp"

	"cashbook-import-service/internal/matcher"
	"cashbook-import-service/internal/parsers"
)

// heritagePattern recognizes Heritage Bank export file names, which
// carry the account number instead of an account column.
var heritagePattern = regexp.MustCompile(`\d+_\d+_\d+_([A-Z]\d+)_\w+\.csv`)

// BankProfile pairs a profile name with a bank file configuration.
type BankProfile struct {
	Name   string
	Config *parsers.BankFileConfig
}

// CommonBankProfiles returns configurations for the bank CSV formats
// the importer knows about.
func CommonBankProfiles() []BankProfile {
	return []BankProfile{
		{
			Name:   "Standard",
			Config: parsers.DefaultBankFileConfig(),
		},
		{
			Name: "Heritage",
			Config: &parsers.BankFileConfig{
				Name: "Heritage Bank",
				ColumnMap: map[string]string{
					parsers.FieldDate: "Transaction Date",
				},
				// The first two lines are current-balance summaries.
				SkipLines:           2,
				AccountFromFilename: heritagePattern,
				Delimiter:           ',',
			},
		},
		{
			Name: "Statement",
			Config: &parsers.BankFileConfig{
				Name: "Account Statement",
				ColumnMap: map[string]string{
					parsers.FieldAccount:   "Account Number",
					parsers.FieldReference: "Transaction Details",
				},
				Delimiter: ',',
			},
		},
	}
}

// BankProfileByName returns the bank configuration for a profile name.
func BankProfileByName(name string) (*parsers.BankFileConfig, error) {
	for _, profile := range CommonBankProfiles() {
		if profile.Name == name {
			return profile.Config, nil
		}
	}
	return nil, fmt.Errorf("unknown bank profile: %s", name)
}

// DetectBankProfile picks a profile for a file name: Heritage-style
// names get the Heritage profile, everything else the statement layout.
func DetectBankProfile(filename string) *parsers.BankFileConfig {
	if heritagePattern.MatchString(filename) {
		config, _ := BankProfileByName("Heritage")
		return config
	}
	config, _ := BankProfileByName("Statement")
	return config
}

// CreateMatchingConfig creates a matching configuration with CLI
// overrides applied.
func CreateMatchingConfig(dateToleranceDays int, minReferenceOverlap float64) *matcher.Config {
	config := matcher.DefaultConfig()

	if dateToleranceDays > 0 {
		config.DateToleranceDays = dateToleranceDays
	}
	if minReferenceOverlap > 0 {
		config.MinReferenceOverlap = minReferenceOverlap
	}

	return config
}
