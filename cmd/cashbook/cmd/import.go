package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	appconfig "cashbook-import-service/cmd/cashbook/config"
	"cashbook-import-service/internal/categorize"
	"cashbook-import-service/internal/matcher"
	"cashbook-import-service/internal/models"
	"cashbook-import-service/internal/parsers"
	"cashbook-import-service/internal/reconciler"
	"cashbook-import-service/internal/reporter"
	"cashbook-import-service/internal/sorter"
	"cashbook-import-service/pkg/errors"
	"cashbook-import-service/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	cashbookFile   string
	importPattern  string
	bankProfile    string
	minConfidence  float64
	dateTolerance  int
	minRefOverlap  float64
	outputFormat   string
	skipPrediction bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import bank transactions into the cashbook",
	Long: `Import reads bank CSV exports matching the given pattern, reconciles
them against the existing cashbook, predicts categories for new
transactions, restores balance order, and writes the cashbook back.

The import window must overlap the existing records: at least one
imported transaction has to be identical to an existing one, otherwise
the merge stops with an insufficient-overlap diagnosis and nothing is
written.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&cashbookFile, "cashbook", "c", "", "cashbook CSV file to import into (required)")
	importCmd.Flags().StringVarP(&importPattern, "pattern", "p", "", "bank export file pattern to import")
	importCmd.Flags().StringVar(&bankProfile, "bank-profile", "", "bank profile name (default: detect from file name)")
	importCmd.Flags().Float64Var(&minConfidence, "min-confidence", categorize.DefaultMinConfidence, "minimum confidence for category prediction")
	importCmd.Flags().IntVar(&dateTolerance, "date-tolerance", 0, "override date drift tolerance in days")
	importCmd.Flags().Float64Var(&minRefOverlap, "reference-overlap", 0, "override minimum reference token overlap percent")
	importCmd.Flags().StringVar(&outputFormat, "output-format", "console", "summary format: console or json")
	importCmd.Flags().BoolVar(&skipPrediction, "no-predict", false, "skip category prediction")

	importCmd.MarkFlagRequired("cashbook")
}

func runImport(cmd *cobra.Command, args []string) error {
	log, err := buildLogger()
	if err != nil {
		return err
	}
	log = log.WithComponent("import")

	transactions, err := parsers.ReadCashbook(cashbookFile)
	if err != nil {
		return reportError(log, err)
	}
	log.Infof("loaded %d transactions from %s", len(transactions), cashbookFile)

	importedCount := 0
	if importPattern != "" {
		imported, err := readImports(log)
		if err != nil {
			return reportError(log, err)
		}

		merged, err := reconciler.NewMerger(matchingConfig()).Merge(transactions, imported)
		if err != nil {
			return reportError(log, err)
		}

		importedCount = len(imported)
		transactions = merged
		log.Infof("merged %d imported transactions, cashbook now has %d", importedCount, len(transactions))
	}

	predictedCount := 0
	if !skipPrediction {
		predictedCount = predictCategories(log, transactions)
	}

	// Merge already sorts; sort again for runs without an import so the
	// cashbook always leaves in balance-chain order.
	sorted, err := sorter.Sort(transactions)
	if err != nil {
		return reportError(log, err)
	}

	if err := parsers.WriteCashbook(cashbookFile, sorted); err != nil {
		return reportError(log, err)
	}
	log.Infof("wrote %d transactions to %s", len(sorted), cashbookFile)

	summary := reporter.Build(sorted, importedCount, predictedCount)
	return summary.Write(os.Stdout, reporter.Format(outputFormat))
}

func readImports(log logger.Logger) ([]*models.Transaction, error) {
	bankConfig, err := resolveBankProfile()
	if err != nil {
		return nil, err
	}

	log.Infof("importing transactions from %s (%s profile)", importPattern, bankConfig.Name)
	return parsers.ReadBankFiles(importPattern, bankConfig)
}

func resolveBankProfile() (*parsers.BankFileConfig, error) {
	if bankProfile != "" {
		config, err := appconfig.BankProfileByName(bankProfile)
		if err != nil {
			return nil, errors.ConfigurationError("bank-profile", err)
		}
		return config, nil
	}
	return appconfig.DetectBankProfile(filepath.Base(importPattern)), nil
}

func matchingConfig() *matcher.Config {
	return appconfig.CreateMatchingConfig(dateTolerance, minRefOverlap)
}

func predictCategories(log logger.Logger, transactions []*models.Transaction) int {
	predictor, err := categorize.Train(transactions)
	if err != nil {
		log.WithError(err).Warnf("skipping category prediction")
		return 0
	}

	filled := categorize.Backfill(transactions, predictor, minConfidence)
	for _, t := range filled {
		log.Debugf("predicted category %q for %q", t.Category, t.Reference)
	}
	return len(filled)
}

func buildLogger() (logger.Logger, error) {
	config := logger.DefaultConfig()
	if verbose {
		config.Level = logger.DebugLevel
	}
	return logger.New(config)
}

func reportError(log logger.Logger, err error) error {
	if ledgerErr, ok := errors.AsLedgerError(err); ok {
		log.WithFields(logger.Fields{
			"category": ledgerErr.Category,
			"code":     ledgerErr.Code,
		}).Errorf("%s", ledgerErr.Error())
	} else {
		log.Errorf("%s", err.Error())
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
	return err
}
