// Package classifier is the text classification back end trained by the trainer
// and used for ensemble predictions.
package classifier

import "gonum.org/v1/gonum/mat"
import "github.com/neurlang/tweetclass/config"

// Logs are the figures of one finished epoch.
type Logs struct {
	Epoch int

	Loss, Acc, F1 float64

	// HasVal reports whether validation data was given
	HasVal              bool
	ValLoss, ValAcc, ValF1 float64

	LearningRate float64
}

// History collects the logs of every epoch of a fit.
type History struct {
	Epochs []Logs
}

// Callback is notified at the end of every epoch. An error stops the fit.
type Callback interface {
	EpochEnd(m Model, logs Logs) error
}

// FitOptions control a fit.
type FitOptions struct {
	Epochs    int
	BatchSize int
	Callbacks []Callback

	// Verbose logs a line per epoch
	Verbose bool
}

// Model is a trainable classifier of padded id sequences.
type Model interface {
	Fit(x [][]int32, y *mat.Dense, valX [][]int32, valY *mat.Dense, opts FitOptions) (History, error)
	Evaluate(x [][]int32, y *mat.Dense, batchSize int) (loss, acc, f1 float64)
	Predict(x [][]int32, batchSize int) *mat.Dense
	SaveWeights(path string) error
	LoadWeights(path string) error
	SetLearningRate(lr float64)
	LearningRate() float64
}

// Architecture shapes a bag-of-embeddings network.
type Architecture struct {
	// Pooling is mean, max or meanmax (both concatenated)
	Pooling      string  `json:"pooling"`
	Hidden       int     `json:"hidden"`
	EmbeddingDim int     `json:"embedding_dim"`
	Trainable    bool    `json:"trainable"`
	LearningRate float64 `json:"learning_rate"`
}

// FromConfig completes a family architecture with the embedding dimension.
func FromConfig(a config.Architecture, dim int) Architecture {
	return Architecture{
		Pooling:      a.Pooling,
		Hidden:       a.Hidden,
		EmbeddingDim: dim,
		Trainable:    a.Trainable,
		LearningRate: a.LearningRate,
	}
}

// Builder makes a fresh, untrained model.
type Builder func() (Model, error)

// NewBuilder returns a Builder of bag models. Every model built gets the next seed,
// so the folds of a cross-validation start from different weights.
func NewBuilder(arch Architecture, features, classes int, pretrained *mat.Dense, seed int64, threads int) Builder {
	var n int64
	return func() (Model, error) {
		m, err := New(arch, features, classes, pretrained, seed+n, threads)
		n++
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

// BuilderFor builds models of a configured family over ids 0..features-1.
func BuilderFor(cfg *config.Config, family string, features int, pretrained *mat.Dense) (Builder, error) {
	f, err := cfg.Family(family)
	if err != nil {
		return nil, err
	}
	arch := FromConfig(f.Architecture, cfg.EmbeddingDim)
	return NewBuilder(arch, features, len(cfg.Classes), pretrained, cfg.Seed, cfg.Threads), nil
}
