// Package crossval splits labelled rows into stratified folds.
package crossval

import "math/rand"
import "sort"
import "github.com/pkg/errors"
import "gonum.org/v1/gonum/mat"

// Fold is one train/test split, both index lists sorted.
type Fold struct {
	Train []int
	Test  []int
}

// StratifiedKFold deals the rows of every class over K folds in turn, so each fold
// holds every class to within one row.
type StratifiedKFold struct {
	K       int
	Shuffle bool
	Seed    int64
}

// Split returns K folds whose test sets partition the rows.
func (s StratifiedKFold) Split(labels []int) ([]Fold, error) {
	if s.K < 2 {
		return nil, errors.Errorf("need at least 2 folds, got %d", s.K)
	}
	if s.K > len(labels) {
		return nil, errors.Errorf("can't make %d folds of %d rows", s.K, len(labels))
	}
	var byClass = make(map[int][]int)
	var classes []int
	for i, l := range labels {
		if _, ok := byClass[l]; !ok {
			classes = append(classes, l)
		}
		byClass[l] = append(byClass[l], i)
	}
	sort.Ints(classes)

	var rng *rand.Rand
	if s.Shuffle {
		rng = rand.New(rand.NewSource(s.Seed))
	}
	var fold = make([]int, len(labels))
	var turn int
	for _, c := range classes {
		rows := byClass[c]
		if rng != nil {
			rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		}
		for _, r := range rows {
			fold[r] = turn % s.K
			turn++
		}
	}

	var o = make([]Fold, s.K)
	for r, k := range fold {
		for f := range o {
			if f == k {
				o[f].Test = append(o[f].Test, r)
			} else {
				o[f].Train = append(o[f].Train, r)
			}
		}
	}
	return o, nil
}

// ToCategorical one-hot encodes labels 0..classes-1.
func ToCategorical(labels []int, classes int) *mat.Dense {
	m := mat.NewDense(len(labels), classes, nil)
	for i, l := range labels {
		m.Set(i, l, 1)
	}
	return m
}

// Take selects rows of data.
func Take(data [][]int32, idx []int) [][]int32 {
	var o = make([][]int32, len(idx))
	for i, j := range idx {
		o[i] = data[j]
	}
	return o
}

// TakeLabels selects labels.
func TakeLabels(labels []int, idx []int) []int {
	var o = make([]int, len(idx))
	for i, j := range idx {
		o[i] = labels[j]
	}
	return o
}
