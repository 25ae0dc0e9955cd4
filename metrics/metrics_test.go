package metrics

import "math"
import "strings"
import "testing"
import "gonum.org/v1/gonum/mat"

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestFBeta(t *testing.T) {
	yTrue := mat.NewDense(4, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		1, 0, 0,
	})
	yPred := mat.NewDense(4, 3, []float64{
		0.8, 0.1, 0.1, // hit
		0.5, 0.4, 0.1, // 0.5 rounds to 0, 0.4 to 0: no prediction at all
		0.2, 0.2, 0.6, // hit
		0.1, 0.7, 0.2, // miss
	})
	// tp 2, possible 4, predicted 3
	p, r := 2/(3+Epsilon), 2/(4+Epsilon)
	want := 2 * p * r / (p + r)
	if got := FBeta(yTrue, yPred); !near(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
	if got := FBeta(yTrue, mat.NewDense(4, 3, nil)); got != 0 {
		t.Errorf("no predictions: %v", got)
	}
}

func TestBatchFBeta(t *testing.T) {
	yTrue := mat.NewDense(3, 2, []float64{1, 0, 0, 1, 1, 0})
	yPred := mat.NewDense(3, 2, []float64{0.9, 0.1, 0.9, 0.1, 0.9, 0.1})
	first := FBeta(yTrue.Slice(0, 2, 0, 2), yPred.Slice(0, 2, 0, 2))
	second := FBeta(yTrue.Slice(2, 3, 0, 2), yPred.Slice(2, 3, 0, 2))
	want := (2*first + second) / 3
	if got := BatchFBeta(yTrue, yPred, 2); !near(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
	if got := BatchFBeta(yTrue, yPred, 0); !near(got, FBeta(yTrue, yPred)) {
		t.Errorf("single batch %v", got)
	}
}

func TestReport(t *testing.T) {
	yTrue := []int{0, 0, 1, 1, 2, 2}
	yPred := []int{0, 1, 1, 1, 2, 0}
	if got := Accuracy(yTrue, yPred); !near(got, 4.0/6) {
		t.Errorf("accuracy %v", got)
	}
	cm := ConfusionMatrix(yTrue, yPred, 3)
	want := mat.NewDense(3, 3, []float64{1, 1, 0, 0, 2, 0, 1, 0, 1})
	if !mat.Equal(cm, want) {
		t.Errorf("confusion\n%v", mat.Formatted(cm))
	}
	// f1: class 0 p=.5 r=.5, class 1 p=2/3 r=1, class 2 p=1 r=.5
	f1 := (0.5 + 0.8 + 2.0/3) / 3
	if got := F1Macro(yTrue, yPred, 3); !near(got, f1) {
		t.Errorf("f1 macro %v want %v", got, f1)
	}
	report := ClassificationReport(yTrue, yPred, []string{"-1", "0", "1"})
	if !strings.Contains(report, "avg / total") || !strings.Contains(report, "0.80") {
		t.Errorf("report\n%s", report)
	}
	if got := Argmax(mat.NewDense(2, 3, []float64{0.1, 0.7, 0.2, 0.5, 0.5, 0})); got[0] != 1 || got[1] != 0 {
		t.Errorf("argmax %v", got)
	}
}
