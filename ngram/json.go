package ngram

import "compress/lzw"
import "encoding/json"
import "io"
import "os"

import "github.com/pkg/errors"

type state struct {
	Start   int      `json:"start"`
	Buckets uint32   `json:"buckets,omitempty"`
	Range   int      `json:"ngram_range"`
	Ngrams  []string `json:"ngrams"`
	IDs     []int    `json:"ids"`
}

// Save writes the index to a lzw file
func (x *Index) Save(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "can't create n-gram index %q", name)
	}
	err = x.WriteCompressed(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteCompressed writes the index to a writer
func (x *Index) WriteCompressed(w io.Writer) error {
	var s = state{Start: x.start, Buckets: x.buckets, Range: x.ngramRange, Ngrams: x.order}
	for _, k := range x.order {
		s.IDs = append(s.IDs, x.ids[k])
	}
	lw := lzw.NewWriter(w, lzw.LSB, 8)
	if err := json.NewEncoder(lw).Encode(s); err != nil {
		lw.Close()
		return errors.Wrap(err, "can't encode n-gram index")
	}
	return lw.Close()
}

// LoadIndex reads an index from a lzw file
func LoadIndex(name string) (*Index, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	x, err := ReadCompressed(file)
	if err != nil {
		return nil, errors.Wrapf(err, "n-gram index %q", name)
	}
	return x, nil
}

// ReadCompressed reads an index from a reader
func ReadCompressed(r io.Reader) (*Index, error) {
	lr := lzw.NewReader(r, lzw.LSB, 8)
	defer lr.Close()
	var s state
	if err := json.NewDecoder(lr).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "can't decode n-gram index")
	}
	if len(s.IDs) != len(s.Ngrams) {
		return nil, errors.Errorf("%d n-grams but %d ids", len(s.Ngrams), len(s.IDs))
	}
	x := &Index{start: s.Start, buckets: s.Buckets, ngramRange: s.Range, ids: make(map[string]int, len(s.Ngrams))}
	for i, k := range s.Ngrams {
		x.ids[k] = s.IDs[i]
		x.order = append(x.order, k)
	}
	return x, nil
}
