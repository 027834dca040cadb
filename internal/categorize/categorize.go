// Package categorize fills in missing transaction categories. A
// classifier is trained on the references of already-categorized
// transactions and offered to the pipeline behind the Predictor
// interface, so the driver stays decoupled from the model.
package categorize

import (
	"strings"

	"cashbook-import-service/internal/models"
	"cashbook-import-service/pkg/errors"

	"github.com/jbrukh/bayesian"
)

// DefaultMinConfidence is the score a prediction must reach before it
// is written onto a transaction.
const DefaultMinConfidence = 0.5

// Predictor assigns a category to a transaction.
type Predictor interface {
	// Predict returns the most likely category for the transaction and
	// a confidence in the range [0, 1].
	Predict(t *models.Transaction) (category string, confidence float64)
}

// BayesPredictor is a naive-Bayes Predictor over reference tokens.
type BayesPredictor struct {
	classifier *bayesian.Classifier
	categories []string
}

// Train builds a BayesPredictor from the categorized transactions in
// the sequence. Uncategorized records are ignored. At least two
// distinct categories are required; with fewer there is nothing to
// discriminate and a no-training-data error is returned.
func Train(transactions []*models.Transaction) (*BayesPredictor, error) {
	byCategory := make(map[string][]*models.Transaction)
	var categories []string

	for _, t := range transactions {
		if !t.HasCategory() {
			continue
		}
		if _, ok := byCategory[t.Category]; !ok {
			categories = append(categories, t.Category)
		}
		byCategory[t.Category] = append(byCategory[t.Category], t)
	}

	if len(categories) < 2 {
		return nil, errors.New(errors.CategoryReconciliation, errors.CodeNoTrainingData,
			"cannot train category predictor: need categorized transactions spanning at least two categories").
			WithContext("categories", len(categories))
	}

	classes := make([]bayesian.Class, len(categories))
	for i, category := range categories {
		classes[i] = bayesian.Class(category)
	}

	classifier := bayesian.NewClassifier(classes...)
	for category, categorized := range byCategory {
		for _, t := range categorized {
			words := strings.Fields(t.Reference)
			if len(words) > 0 {
				classifier.Learn(words, bayesian.Class(category))
			}
		}
	}

	return &BayesPredictor{classifier: classifier, categories: categories}, nil
}

// Predict implements Predictor.
func (p *BayesPredictor) Predict(t *models.Transaction) (string, float64) {
	words := strings.Fields(t.Reference)
	if len(words) == 0 {
		return "", 0
	}

	scores, best, _ := p.classifier.ProbScores(words)
	return p.categories[best], scores[best]
}

// Categories returns the category labels the predictor was trained on.
func (p *BayesPredictor) Categories() []string {
	return append([]string{}, p.categories...)
}

// Backfill assigns a category to every uncategorized transaction whose
// prediction reaches minConfidence, and returns the records it filled
// in. Already-categorized records are never touched.
func Backfill(transactions []*models.Transaction, predictor Predictor, minConfidence float64) []*models.Transaction {
	var filled []*models.Transaction

	for _, t := range transactions {
		if t.HasCategory() {
			continue
		}

		category, confidence := predictor.Predict(t)
		if category != "" && confidence > minConfidence {
			t.Category = category
			filled = append(filled, t)
		}
	}

	return filled
}
