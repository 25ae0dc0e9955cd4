// Package ensemble collects the cross-validation scores and fold predictions of every
// model family directory.
package ensemble

import "bufio"
import "io"
import "log"
import "os"
import "path/filepath"
import "regexp"
import "strconv"
import "strings"
import "github.com/pkg/errors"
import "github.com/sbinet/npyio"
import "gonum.org/v1/gonum/mat"
import "gopkg.in/yaml.v3"
import "github.com/neurlang/tweetclass/classifier"
import "github.com/neurlang/tweetclass/config"

// ParseScores reads the first line of r as a list literal of numbers, e.g. [0.61, 0.64].
func ParseScores(r io.Reader) ([]float64, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "can't read scores")
	}
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return nil, errors.Errorf("scores %q are not a list", line)
	}
	var scores []float64
	if err := yaml.Unmarshal([]byte(line), &scores); err != nil {
		return nil, errors.Wrapf(err, "can't parse scores %q", line)
	}
	return scores, nil
}

// ScoreFile finds the one score file of a family.
func ScoreFile(cfg *config.Config, family string) (string, error) {
	paths, err := filepath.Glob(filepath.Join(cfg.ModelsDir, family, "*.txt"))
	if err != nil {
		return "", errors.Wrap(err, "can't list score files")
	}
	if len(paths) != 1 {
		return "", errors.Errorf("%s: want exactly one score file, found %d", family, len(paths))
	}
	return paths[0], nil
}

// ReadScores parses a score file.
func ReadScores(path string) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "can't open scores")
	}
	defer file.Close()
	scores, err := ParseScores(file)
	return scores, errors.Wrapf(err, "%s", path)
}

// Normalize divides every score by their single precision sum.
func Normalize(scores []float64) []float64 {
	var sum float32
	for _, s := range scores {
		sum += float32(s)
	}
	var o = make([]float64, len(scores))
	for i, s := range scores {
		o[i] = s / float64(sum)
	}
	return o
}

// Scores concatenates the score files of all families in order.
func Scores(cfg *config.Config, normalize bool) ([]float64, error) {
	var scores []float64
	for _, family := range cfg.FamilyNames() {
		path, err := ScoreFile(cfg, family)
		if err != nil {
			return nil, err
		}
		log.Printf("loading score file %s", path)
		s, err := ReadScores(path)
		if err != nil {
			return nil, err
		}
		scores = append(scores, s...)
	}
	if normalize {
		scores = Normalize(scores)
	}
	return scores, nil
}

var digits = regexp.MustCompile(`\d+`)

// FoldID is the first run of digits in the base name of a checkpoint.
func FoldID(path string) (int, error) {
	m := digits.FindString(filepath.Base(path))
	if m == "" {
		return 0, errors.Errorf("no fold number in %q", path)
	}
	return strconv.Atoi(m)
}

// Checkpoints lists the weight files of a family, sorted.
func Checkpoints(cfg *config.Config, family string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(cfg.ModelsDir, family, "*"+cfg.CheckpointExt))
	if err != nil {
		return nil, errors.Wrap(err, "can't list checkpoints")
	}
	if len(paths) == 0 {
		return nil, errors.Errorf("%s: no checkpoints", family)
	}
	return paths, nil
}

// Family holds the predictions of one family.
type Family struct {
	Name        string
	Checkpoints []string

	// Folds has one n x classes prediction per checkpoint, Mean is their average
	Folds []*mat.Dense
	Mean  *mat.Dense

	// Scores are the score file entries reordered to match Checkpoints
	Scores []float64

	// Saved is where Mean was written
	Saved string
}

// Predictions predicts data with every checkpoint of every family, building one model
// per family with builders, and saves the fold average of each family to
// <saveDir>/<family>/<score file name>.npy. It returns the families and the reordered,
// optionally normalised, scores of all checkpoints.
func Predictions(cfg *config.Config, builders []classifier.Builder, data [][]int32, saveDir string,
	normalize bool) ([]Family, []float64, error) {

	families := cfg.FamilyNames()
	if len(builders) != len(families) {
		return nil, nil, errors.Errorf("%d models given for %d model families", len(builders), len(families))
	}
	if len(data) == 0 {
		return nil, nil, errors.New("nothing to predict")
	}
	var out []Family
	var scores []float64
	for f, name := range families {
		fam, err := predictFamily(cfg, name, builders[f], data, saveDir)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, fam)
		scores = append(scores, fam.Scores...)
	}
	if normalize {
		scores = Normalize(scores)
	}
	return out, scores, nil
}

func predictFamily(cfg *config.Config, name string, build classifier.Builder, data [][]int32,
	saveDir string) (Family, error) {

	fam := Family{Name: name}
	scorePath, err := ScoreFile(cfg, name)
	if err != nil {
		return fam, err
	}
	log.Printf("loading score file %s", scorePath)
	all, err := ReadScores(scorePath)
	if err != nil {
		return fam, err
	}
	fam.Checkpoints, err = Checkpoints(cfg, name)
	if err != nil {
		return fam, err
	}
	for _, path := range fam.Checkpoints {
		id, err := FoldID(path)
		if err != nil {
			return fam, err
		}
		if id < 1 || id > len(all) {
			return fam, errors.Errorf("%s: fold %d has no score in %s", path, id, scorePath)
		}
		fam.Scores = append(fam.Scores, all[id-1])
	}

	model, err := build()
	if err != nil {
		return fam, err
	}
	for _, path := range fam.Checkpoints {
		if err := model.LoadWeights(path); err != nil {
			return fam, err
		}
		fam.Folds = append(fam.Folds, model.Predict(data, cfg.BatchSize))
		log.Printf("got predictions for model %s", path)
	}
	fam.Mean = Mean(fam.Folds)

	dir := filepath.Join(saveDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fam, errors.Wrapf(err, "can't create %q", dir)
	}
	base := filepath.Base(scorePath)
	fam.Saved = filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".npy")
	if err := WriteNpy(fam.Saved, fam.Mean); err != nil {
		return fam, err
	}
	log.Printf("saved predictions for %s in %s", name, fam.Saved)
	return fam, nil
}

// Mean averages equally shaped matrices.
func Mean(ms []*mat.Dense) *mat.Dense {
	r, c := ms[0].Dims()
	o := mat.NewDense(r, c, nil)
	for _, m := range ms {
		o.Add(o, m)
	}
	o.Scale(1/float64(len(ms)), o)
	return o
}

// WeightedVote sums the fold predictions of all families, each weighted by its score.
// scores are in family then checkpoint order, as returned by Predictions.
func WeightedVote(families []Family, scores []float64) (*mat.Dense, error) {
	var n int
	for _, f := range families {
		n += len(f.Folds)
	}
	if n == 0 || n != len(scores) {
		return nil, errors.Errorf("%d fold predictions but %d scores", n, len(scores))
	}
	r, c := families[0].Folds[0].Dims()
	o := mat.NewDense(r, c, nil)
	var k int
	for _, f := range families {
		for _, m := range f.Folds {
			var w mat.Dense
			w.Scale(scores[k], m)
			o.Add(o, &w)
			k++
		}
	}
	return o, nil
}

// WriteNpy saves a matrix in NumPy format.
func WriteNpy(path string, m mat.Matrix) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "can't create %q", path)
	}
	err = npyio.Write(file, m)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "can't write %q", path)
}

// ReadNpy loads a matrix saved by WriteNpy.
func ReadNpy(path string) (*mat.Dense, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %q", path)
	}
	defer file.Close()
	var m mat.Dense
	if err := npyio.Read(file, &m); err != nil {
		return nil, errors.Wrapf(err, "can't read %q", path)
	}
	return &m, nil
}
