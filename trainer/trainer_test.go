package trainer

import "math"
import "os"
import "path/filepath"
import "strings"
import "testing"
import "gonum.org/v1/gonum/mat"
import "github.com/neurlang/tweetclass/classifier"
import "github.com/neurlang/tweetclass/config"

type fake struct {
	lr    float64
	saves []string
}

func (f *fake) Fit(x [][]int32, y *mat.Dense, valX [][]int32, valY *mat.Dense, opts classifier.FitOptions) (classifier.History, error) {
	return classifier.History{}, nil
}
func (f *fake) Evaluate(x [][]int32, y *mat.Dense, batchSize int) (float64, float64, float64) {
	return 0, 0, 0
}
func (f *fake) Predict(x [][]int32, batchSize int) *mat.Dense {
	o := mat.NewDense(len(x), 2, nil)
	for i := range x {
		o.Set(i, int(x[i][0])%2, 1)
	}
	return o
}
func (f *fake) SaveWeights(path string) error {
	f.saves = append(f.saves, path)
	return nil
}
func (f *fake) LoadWeights(path string) error {
	_, err := os.Stat(path)
	return err
}
func (f *fake) SetLearningRate(lr float64) { f.lr = lr }
func (f *fake) LearningRate() float64      { return f.lr }

func val(epoch int, f1 float64) classifier.Logs {
	return classifier.Logs{Epoch: epoch, HasVal: true, ValF1: f1, F1: -1}
}

func TestCheckpoint(t *testing.T) {
	m := &fake{}
	c := NewCheckpoint("best.lzw")
	c.Verbose = false
	for i, f1 := range []float64{0.5, 0.5, 0.4, 0.6, 0.6} {
		if err := c.EpochEnd(m, val(i+1, f1)); err != nil {
			t.Fatal(err)
		}
	}
	if len(m.saves) != 2 || c.Saves != 2 || c.Best != 0.6 {
		t.Errorf("saves %v best %v", m.saves, c.Best)
	}
	// without validation data the training f1 is watched
	if Monitored(classifier.Logs{F1: 0.7}) != 0.7 {
		t.Errorf("monitored training f1")
	}
}

func TestReduceLROnPlateau(t *testing.T) {
	m := &fake{lr: 1e-3}
	r := NewReduceLROnPlateau()
	r.Verbose = false
	var lrs []float64
	for epoch := 1; epoch <= 16; epoch++ {
		// improvements below min delta don't count
		f1 := 0.5
		if epoch > 1 {
			f1 = 0.50005
		}
		if err := r.EpochEnd(m, val(epoch, f1)); err != nil {
			t.Fatal(err)
		}
		lrs = append(lrs, m.lr)
	}
	// five epochs without improvement reduce at epoch 6; cooldown covers 7..10, counting
	// resumes at 11 and reaches patience at 15
	for epoch, lr := range lrs {
		want := 1e-3
		switch {
		case epoch+1 >= 15:
			want = 1e-3 * 0.8 * 0.8
		case epoch+1 >= 6:
			want = 1e-3 * 0.8
		}
		if math.Abs(lr-want) > 1e-12 {
			t.Errorf("epoch %d: lr %v want %v", epoch+1, lr, want)
		}
	}

	floor := &fake{lr: 1e-6}
	r = NewReduceLROnPlateau()
	r.Verbose = false
	for epoch := 1; epoch <= 10; epoch++ {
		r.EpochEnd(floor, val(epoch, 0.5))
	}
	if floor.lr != 1e-6 {
		t.Errorf("lr below minimum: %v", floor.lr)
	}
}

func TestSampleSize(t *testing.T) {
	if n := sampleSize(1000, 95); n != 277 {
		t.Errorf("sample size %d", n)
	}
	if n := sampleSize(10, 95); n > 10 {
		t.Errorf("sample size %d above population", n)
	}
}

func TestEvaluateFunc(t *testing.T) {
	x := [][]int32{{1}, {2}, {3}, {4}}
	y := mat.NewDense(4, 2, []float64{0, 1, 1, 0, 0, 1, 0, 1})
	eval := NewEvaluateFunc(&fake{}, x, y, 2, 0, 2)
	f1, digest := eval()
	again, same := eval()
	if f1 != again || digest != same {
		t.Errorf("evaluation not repeatable")
	}
	// three of four right, one per batch of two
	if math.Abs(f1-0.75) > 1e-6 {
		t.Errorf("f1 %v", f1)
	}
	if _, d := NewEvaluateFunc(&fake{}, [][]int32{{2}, {2}, {3}, {4}}, y, 2, 0, 2)(); d == digest {
		t.Errorf("digest ignores predictions")
	}
	if f1, d := NewEvaluateFunc(&fake{}, nil, y, 2, 0, 2)(); f1 != 0 || d != [32]byte{} {
		t.Errorf("no rows: f1 %v digest %x", f1, d)
	}
}

func TestFormatScores(t *testing.T) {
	if s := FormatScores([]float64{0.61, 0.64, 0.6}); s != "[0.61, 0.64, 0.6]" {
		t.Errorf("got %s", s)
	}
	if s := FormatScores(nil); s != "[]" {
		t.Errorf("got %s", s)
	}
}

func TestResume(t *testing.T) {
	m := &fake{}
	if err := Resume(m, true, filepath.Join(t.TempDir(), "missing.lzw")); err != nil {
		t.Errorf("missing checkpoint: %v", err)
	}
	if err := Resume(m, false, ""); err != nil {
		t.Error(err)
	}
}

func toy(n int) ([][]int32, []int) {
	x := make([][]int32, n)
	y := make([]int, n)
	for i := range x {
		y[i] = i % 3
		x[i] = []int32{0, int32(4 + i%4), int32(1 + y[i])}
	}
	return x, y
}

func TestTrainCV(t *testing.T) {
	cfg := config.Default()
	cfg.ModelsDir = t.TempDir()
	cfg.Epochs = 4
	cfg.BatchSize = 4
	cfg.Threads = 2
	x, y := toy(24)
	arch := classifier.Architecture{Pooling: "mean", EmbeddingDim: 4, Trainable: true, LearningRate: 0.05}
	opts := Options{Family: "conv", Build: classifier.NewBuilder(arch, 8, 3, nil, 1, 1)}

	scores, err := TrainCV(cfg, opts, x, y)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 3 {
		t.Fatalf("scores %v", scores)
	}
	for k := 1; k <= 3; k++ {
		if _, err := os.Stat(CheckpointPath(cfg, "conv", "conv", k)); err != nil {
			t.Error(err)
		}
	}
	buf, err := os.ReadFile(ScorePath(cfg, "conv", "conv"))
	if err != nil {
		t.Fatal(err)
	}
	if s := string(buf); s != FormatScores(scores) || !strings.HasPrefix(s, "[") {
		t.Errorf("score file %q", s)
	}

	f1, err := TrainFull(cfg, opts, x, y)
	if err != nil {
		t.Fatal(err)
	}
	if f1 < 0 || f1 > 1 {
		t.Errorf("f1 %v", f1)
	}
	if _, err := os.Stat(FinalPath(cfg, "conv")); err != nil {
		t.Error(err)
	}
}
