package trainer

import "fmt"
import "log"
import "os"
import "path/filepath"
import "strconv"
import "strings"
import "github.com/google/uuid"
import "github.com/pkg/errors"
import "gonum.org/v1/gonum/stat"
import "github.com/neurlang/tweetclass/classifier"
import "github.com/neurlang/tweetclass/config"
import "github.com/neurlang/tweetclass/crossval"

// Options name the model being trained.
type Options struct {
	// Family is the directory the fold checkpoints and scores go to
	Family string

	// Name prefixes the saved files, Family when empty
	Name string

	Build classifier.Builder

	// Resume loads existing checkpoints before fitting
	Resume bool

	// Significance, when in 1..99, scores the per epoch progress digest on a sample
	Significance byte
}

func (o Options) name() string {
	if o.Name == "" {
		return o.Family
	}
	return o.Name
}

// CheckpointPath is the weights file of fold k (1-based).
func CheckpointPath(cfg *config.Config, family, name string, k int) string {
	return filepath.Join(cfg.ModelsDir, family, fmt.Sprintf("%s-cv-%d%s", name, k, cfg.CheckpointExt))
}

// ScorePath is the score file of a family.
func ScorePath(cfg *config.Config, family, name string) string {
	return filepath.Join(cfg.ModelsDir, family, name+"-scores.txt")
}

// FinalPath is the weights file of a model trained on all data.
func FinalPath(cfg *config.Config, name string) string {
	return filepath.Join(cfg.ModelsDir, name+"-final"+cfg.CheckpointExt)
}

// FormatScores renders scores as a list literal.
func FormatScores(scores []float64) string {
	var s = make([]string, len(scores))
	for i, v := range scores {
		s[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(s, ", ") + "]"
}

// WriteScores writes the list literal of scores to path.
func WriteScores(path string, scores []float64) error {
	return errors.Wrapf(os.WriteFile(path, []byte(FormatScores(scores)), 0644), "can't write scores %q", path)
}

func (o Options) fit(cfg *config.Config, run string, fold int, path string,
	xTrain [][]int32, yTrain []int, xVal [][]int32, yVal []int) (float64, error) {

	classes := len(cfg.Classes)
	catTrain := crossval.ToCategorical(yTrain, classes)
	catVal := crossval.ToCategorical(yVal, classes)

	model, err := o.Build()
	if err != nil {
		return 0, err
	}
	if err := Resume(model, o.Resume, path); err != nil {
		return 0, err
	}
	checkpoint := NewCheckpoint(path)
	progress := &Progress{
		Run:      run,
		Fold:     fold,
		Evaluate: NewEvaluateFunc(model, xVal, catVal, cfg.BatchSize, o.Significance, cfg.Threads),
	}
	_, err = model.Fit(xTrain, catTrain, xVal, catVal, classifier.FitOptions{
		Epochs:    cfg.Epochs,
		BatchSize: cfg.BatchSize,
		Callbacks: []classifier.Callback{checkpoint, NewReduceLROnPlateau(), progress},
	})
	if err != nil {
		return 0, err
	}
	if checkpoint.Saves == 0 {
		return 0, errors.Errorf("f1 never improved, no checkpoint at %s", path)
	}
	if err := model.LoadWeights(path); err != nil {
		return 0, err
	}
	_, _, f1 := model.Evaluate(xVal, catVal, cfg.BatchSize)
	return f1, nil
}

// TrainCV cross-validates a fresh model per stratified fold, keeps the best checkpoint
// of every fold and writes the F1 of the folds to the family score file.
func TrainCV(cfg *config.Config, opts Options, data [][]int32, labels []int) ([]float64, error) {
	if len(data) != len(labels) {
		return nil, errors.Errorf("%d rows but %d labels", len(data), len(labels))
	}
	folds, err := crossval.StratifiedKFold{K: cfg.KFolds, Shuffle: true, Seed: cfg.Seed}.Split(labels)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(cfg.ModelsDir, opts.Family)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "can't create %q", dir)
	}
	run := uuid.New().String()
	log.Printf("run %s: %d-fold cross-validation of %s on %d rows", run, cfg.KFolds, opts.name(), len(data))

	var scores []float64
	for i, fold := range folds {
		path := CheckpointPath(cfg, opts.Family, opts.name(), i+1)
		f1, err := opts.fit(cfg, run, i+1, path,
			crossval.Take(data, fold.Train), crossval.TakeLabels(labels, fold.Train),
			crossval.Take(data, fold.Test), crossval.TakeLabels(labels, fold.Test))
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", i+1)
		}
		log.Printf("run %s: f1 score of cross validation %d: %0.4f", run, i+1, f1)
		scores = append(scores, f1)
	}
	log.Printf("run %s: average f1 score: %v", run, stat.Mean(scores, nil))

	if err := WriteScores(ScorePath(cfg, opts.Family, opts.name()), scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// TrainFull trains one model on all rows, validating on the same rows, and returns
// the training F1 of its best checkpoint.
func TrainFull(cfg *config.Config, opts Options, data [][]int32, labels []int) (float64, error) {
	if len(data) != len(labels) {
		return 0, errors.Errorf("%d rows but %d labels", len(data), len(labels))
	}
	if len(data) == 0 {
		return 0, errors.New("no training data")
	}
	if err := os.MkdirAll(cfg.ModelsDir, 0755); err != nil {
		return 0, errors.Wrapf(err, "can't create %q", cfg.ModelsDir)
	}
	run := uuid.New().String()
	log.Printf("run %s: training %s on %d rows", run, opts.name(), len(data))
	f1, err := opts.fit(cfg, run, 0, FinalPath(cfg, opts.name()), data, labels, data, labels)
	if err != nil {
		return 0, err
	}
	log.Printf("run %s: finished training, training f1: %0.4f", run, f1)
	return f1, nil
}
