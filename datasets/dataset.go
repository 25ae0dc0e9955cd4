// Package datasets implements the labelled tweet datasets
package datasets

import "encoding/csv"
import "io"
import "log"
import "os"
import "path/filepath"
import "strconv"
import "strings"
import "github.com/pkg/errors"

// Sample is one labelled text. Label is the class index, Raw the label as written in the file.
type Sample struct {
	Text  string
	Label int
	Raw   int
}

// Dataslice is an in-memory dataset
type Dataslice []Sample

func (d Dataslice) Get(n int) Sample {
	return d[n]
}
func (d Dataslice) Len() int {
	return len(d)
}

// Texts lists the sample texts in order.
func (d Dataslice) Texts() []string {
	var o = make([]string, len(d))
	for i := range d {
		o[i] = d[i].Text
	}
	return o
}

// Labels lists the class indices in order.
func (d Dataslice) Labels() []int {
	var o = make([]int, len(d))
	for i := range d {
		o[i] = d[i].Label
	}
	return o
}

// Counts reports how many samples each class index has.
func (d Dataslice) Counts(classes int) []int {
	var o = make([]int, classes)
	for _, s := range d {
		if s.Label >= 0 && s.Label < classes {
			o[s.Label]++
		}
	}
	return o
}

// LabelMap maps raw labels to consecutive class indices.
type LabelMap struct {
	classes []int
	index   map[int]int
}

// NewLabelMap maps classes[i] to i.
func NewLabelMap(classes []int) *LabelMap {
	m := &LabelMap{classes: append([]int(nil), classes...), index: make(map[int]int)}
	for i, c := range classes {
		m.index[c] = i
	}
	return m
}

// Index returns the class index for a raw label.
func (m *LabelMap) Index(raw int) (int, bool) {
	i, ok := m.index[raw]
	return i, ok
}

// Class returns the raw label of class index i.
func (m *LabelMap) Class(i int) int {
	return m.classes[i]
}

// Len is the number of classes.
func (m *LabelMap) Len() int {
	return len(m.classes)
}

// Names renders the raw labels, for reports.
func (m *LabelMap) Names() []string {
	var o = make([]string, len(m.classes))
	for i, c := range m.classes {
		o[i] = strconv.Itoa(c)
	}
	return o
}

// Unlabeled is the Label of samples read without a label column.
const Unlabeled = -1

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

// columns finds the index of every name in the header, -1 when absent.
func columns(reader *csv.Reader, names ...string) ([]string, []int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, nil, errors.Wrap(err, "can't read csv header")
	}
	var idx = make([]int, len(names))
	for j := range idx {
		idx[j] = -1
	}
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		for j, name := range names {
			if name != "" && col == name {
				idx[j] = i
			}
		}
	}
	return header, idx, nil
}

// ReadCSV reads a CSV with a header row. Rows whose label is missing, not a number or
// not one of the mapped classes are skipped and counted. With an empty labelColumn
// every row is read as Unlabeled.
func ReadCSV(r io.Reader, textColumn, labelColumn string, labels *LabelMap) (Dataslice, int, error) {
	reader := newReader(r)
	header, idx, err := columns(reader, textColumn, labelColumn)
	if err != nil {
		return nil, 0, err
	}
	var textIdx, labelIdx = idx[0], idx[1]
	if textIdx < 0 || (labelColumn != "" && labelIdx < 0) {
		return nil, 0, errors.Errorf("csv header %v lacks %q or %q", header, textColumn, labelColumn)
	}

	var data Dataslice
	var skipped int
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, skipped, errors.Wrap(err, "can't read csv row")
		}
		if textIdx >= len(row) || labelIdx >= len(row) {
			skipped++
			continue
		}
		if labelIdx < 0 {
			data = append(data, Sample{Text: row[textIdx], Label: Unlabeled, Raw: Unlabeled})
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row[labelIdx]), 64)
		if err != nil {
			skipped++
			continue
		}
		raw := int(value)
		class, ok := labels.Index(raw)
		if !ok || float64(raw) != value {
			skipped++
			continue
		}
		data = append(data, Sample{Text: row[textIdx], Label: class, Raw: raw})
	}
	return data, skipped, nil
}

// Files returns the CSV files holding source (obama, romney or full) in mode (train, test or full).
func Files(source, mode string) ([]string, error) {
	var prefix, suffix string
	switch mode {
	case "train":
		suffix = "_csv.csv"
	case "test":
		suffix = "_csv_test.csv"
	case "full":
		prefix, suffix = "full_", "_csv.csv"
	default:
		return nil, errors.Errorf("unknown mode %q", mode)
	}
	var names []string
	switch source {
	case "full":
		names = []string{"obama", "romney"}
	case "obama", "romney":
		names = []string{source}
	default:
		return nil, errors.Errorf("unknown dataset %q", source)
	}
	var o []string
	for _, n := range names {
		o = append(o, prefix+n+suffix)
	}
	return o, nil
}

// Labeled reports whether every file for source and mode in dir has labelColumn.
func Labeled(dir, source, mode, labelColumn string) (bool, error) {
	files, err := Files(source, mode)
	if err != nil {
		return false, err
	}
	for _, name := range files {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			return false, errors.Wrapf(err, "can't open dataset %q", path)
		}
		_, idx, err := columns(newReader(f), labelColumn)
		f.Close()
		if err != nil {
			return false, errors.Wrapf(err, "dataset %q", path)
		}
		if idx[0] < 0 {
			return false, nil
		}
	}
	return true, nil
}

// Load reads and concatenates the files for source and mode found in dir. An empty
// labelColumn loads the texts as Unlabeled.
func Load(dir, source, mode, textColumn, labelColumn string, labels *LabelMap) (Dataslice, error) {
	files, err := Files(source, mode)
	if err != nil {
		return nil, err
	}
	log.Printf("loading %s data", mode)
	var data Dataslice
	for _, name := range files {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "can't open dataset %q", path)
		}
		part, skipped, err := ReadCSV(f, textColumn, labelColumn, labels)
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "dataset %q", path)
		}
		if skipped > 0 {
			log.Printf("%s: skipped %d rows without a known label", name, skipped)
		}
		data = append(data, part...)
	}
	if len(data) == 0 {
		return nil, errors.Errorf("no samples in %v", files)
	}
	return data, nil
}
