package tokenizer

import "compress/lzw"
import "encoding/json"
import "io"
import "os"

import "github.com/pkg/errors"

type state struct {
	Options   Options        `json:"options"`
	Counts    []wordCount    `json:"counts"`
	Docs      map[string]int `json:"docs"`
	Documents int            `json:"documents"`
}

// Save writes the tokenizer to a lzw file
func (t *Tokenizer) Save(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "can't create tokenizer file %q", name)
	}
	err = t.WriteCompressed(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteCompressed writes the tokenizer to a writer
func (t *Tokenizer) WriteCompressed(w io.Writer) error {
	lw := lzw.NewWriter(w, lzw.LSB, 8)
	err := json.NewEncoder(lw).Encode(state{
		Options:   t.opts,
		Counts:    t.counts,
		Docs:      t.docs,
		Documents: t.documents,
	})
	if err != nil {
		lw.Close()
		return errors.Wrap(err, "can't encode tokenizer")
	}
	return lw.Close()
}

// Load reads a tokenizer from a lzw file
func Load(name string) (*Tokenizer, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	t, err := ReadCompressed(file)
	if err != nil {
		return nil, errors.Wrapf(err, "tokenizer file %q", name)
	}
	return t, nil
}

// ReadCompressed reads a tokenizer from a reader
func ReadCompressed(r io.Reader) (*Tokenizer, error) {
	lr := lzw.NewReader(r, lzw.LSB, 8)
	defer lr.Close()
	var s state
	if err := json.NewDecoder(lr).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "can't decode tokenizer")
	}
	t, err := New(s.Options)
	if err != nil {
		return nil, err
	}
	t.counts = s.Counts
	for i, wc := range t.counts {
		t.position[wc.Word] = i
	}
	if s.Docs != nil {
		t.docs = s.Docs
	}
	t.documents = s.Documents
	t.rebuild()
	return t, nil
}

func isNotExist(err error) bool {
	return os.IsNotExist(errors.Cause(err))
}
