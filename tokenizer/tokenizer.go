// Package tokenizer splits tweets into words and maps them to frequency ranked indices.
//
// The word index is 1-based: the most frequent word gets 1, ties keep the order in
// which the words were first seen. Index 0 is never assigned, sequences are later padded with it.
package tokenizer

import "log"
import "sort"
import "strconv"
import "strings"
import "github.com/neurlang/NumToWordsGo/NumToWords"
import "github.com/pkg/errors"
import "golang.org/x/text/unicode/norm"

// DefaultFilters are the characters replaced by the split character before splitting.
const DefaultFilters = "!\"#$%&()*+,-./:;<=>?@[\\]^_`{|}~\t\n"

// Options configure text splitting.
type Options struct {
	// NumWords keeps only words with index below NumWords in sequences, 0 keeps all
	NumWords int `json:"num_words"`

	Filters string `json:"filters"`
	Lower   bool   `json:"lower"`
	Split   string `json:"split"`

	// OOVToken, when set, takes index 1 and replaces unknown words in sequences
	OOVToken string `json:"oov_token,omitempty"`

	// Normalization is one of NFC, NFD, NFKC, NFKD or empty for none
	Normalization string `json:"normalization,omitempty"`

	// SpellNumbers replaces integer tokens with their English words
	SpellNumbers bool `json:"spell_numbers,omitempty"`
}

// DefaultOptions keep all words, lower case, split on space.
func DefaultOptions(numWords int) Options {
	return Options{
		NumWords: numWords,
		Filters:  DefaultFilters,
		Lower:    true,
		Split:    " ",
	}
}

type wordCount struct {
	Word  string `json:"w"`
	Count int    `json:"c"`
}

// Tokenizer maps words to indices.
type Tokenizer struct {
	opts Options

	counts    []wordCount
	position  map[string]int
	docs      map[string]int
	documents int

	index map[string]int
}

// New makes an empty tokenizer.
func New(opts Options) (*Tokenizer, error) {
	switch opts.Normalization {
	case "", "NFC", "NFD", "NFKC", "NFKD":
	default:
		return nil, errors.Errorf("unknown normalization %q", opts.Normalization)
	}
	if opts.Split == "" {
		opts.Split = " "
	}
	t := &Tokenizer{opts: opts}
	t.reset()
	return t, nil
}

func (t *Tokenizer) reset() {
	t.counts = nil
	t.position = make(map[string]int)
	t.docs = make(map[string]int)
	t.documents = 0
	t.index = make(map[string]int)
}

// Options returns the options the tokenizer was made with.
func (t *Tokenizer) Options() Options {
	return t.opts
}

func (t *Tokenizer) normalize(text string) string {
	switch t.opts.Normalization {
	case "NFC":
		return norm.NFC.String(text)
	case "NFD":
		return norm.NFD.String(text)
	case "NFKC":
		return norm.NFKC.String(text)
	case "NFKD":
		return norm.NFKD.String(text)
	}
	return text
}

// Words splits text into words: normalize, lower case, replace filter characters with
// the split character, split, drop empty words.
func (t *Tokenizer) Words(text string) []string {
	text = t.normalize(text)
	if t.opts.Lower {
		text = strings.ToLower(text)
	}
	if t.opts.Filters != "" {
		var b strings.Builder
		b.Grow(len(text))
		for _, r := range text {
			if strings.ContainsRune(t.opts.Filters, r) {
				b.WriteString(t.opts.Split)
			} else {
				b.WriteRune(r)
			}
		}
		text = b.String()
	}
	var words []string
	for _, w := range strings.Split(text, t.opts.Split) {
		if w == "" {
			continue
		}
		if t.opts.SpellNumbers {
			words = append(words, spell(w)...)
			continue
		}
		words = append(words, w)
	}
	return words
}

// spell expands an integer token into words, anything else is returned as is.
func spell(w string) []string {
	for _, r := range w {
		if r < '0' || r > '9' {
			return []string{w}
		}
	}
	num, err := strconv.Atoi(w)
	if err != nil {
		return []string{w}
	}
	sentence, err := NumToWords.Convert(num, "en")
	if err != nil {
		return []string{w}
	}
	var o []string
	for _, f := range strings.Fields(strings.ToLower(sentence)) {
		f = strings.Trim(f, ",-")
		if f != "" {
			o = append(o, f)
		}
	}
	if len(o) == 0 {
		return []string{w}
	}
	return o
}

// Fit counts the words of texts and rebuilds the index. Fitting again adds to the counts.
func (t *Tokenizer) Fit(texts []string) {
	for _, text := range texts {
		t.documents++
		words := t.Words(text)
		var seen = make(map[string]struct{}, len(words))
		for _, w := range words {
			if p, ok := t.position[w]; ok {
				t.counts[p].Count++
			} else {
				t.position[w] = len(t.counts)
				t.counts = append(t.counts, wordCount{Word: w, Count: 1})
			}
			if _, ok := seen[w]; !ok {
				seen[w] = struct{}{}
				t.docs[w]++
			}
		}
	}
	t.rebuild()
}

func (t *Tokenizer) rebuild() {
	var order = make([]wordCount, 0, len(t.counts))
	for _, wc := range t.counts {
		if t.opts.OOVToken != "" && wc.Word == t.opts.OOVToken {
			continue
		}
		order = append(order, wc)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Count > order[j].Count
	})
	t.index = make(map[string]int, len(order)+1)
	var next = 1
	if t.opts.OOVToken != "" {
		t.index[t.opts.OOVToken] = next
		next++
	}
	for _, wc := range order {
		t.index[wc.Word] = next
		next++
	}
}

// WordIndex returns a copy of the word -> index map, including words over NumWords.
func (t *Tokenizer) WordIndex() map[string]int {
	var o = make(map[string]int, len(t.index))
	for k, v := range t.index {
		o[k] = v
	}
	return o
}

// Len is the number of indexed words.
func (t *Tokenizer) Len() int {
	return len(t.index)
}

// Documents is the number of texts fitted.
func (t *Tokenizer) Documents() int {
	return t.documents
}

// Count is how often word was seen while fitting.
func (t *Tokenizer) Count(word string) int {
	if p, ok := t.position[word]; ok {
		return t.counts[p].Count
	}
	return 0
}

// DocumentCount is how many fitted texts contained word.
func (t *Tokenizer) DocumentCount(word string) int {
	return t.docs[word]
}

// Sequence maps the words of text to indices. Unknown words, and words at or over
// NumWords, are dropped or replaced by the OOV index when an OOV token is set.
func (t *Tokenizer) Sequence(text string) []int {
	var oov = 0
	if t.opts.OOVToken != "" {
		oov = t.index[t.opts.OOVToken]
	}
	var seq []int
	for _, w := range t.Words(text) {
		i, ok := t.index[w]
		switch {
		case ok && (t.opts.NumWords <= 0 || i < t.opts.NumWords):
			seq = append(seq, i)
		case oov != 0:
			seq = append(seq, oov)
		}
	}
	return seq
}

// Sequences maps every text, see Sequence.
func (t *Tokenizer) Sequences(texts []string) [][]int {
	var o = make([][]int, len(texts))
	for i, text := range texts {
		o[i] = t.Sequence(text)
	}
	return o
}

// LoadOrFit loads the tokenizer saved at path, or fits a new one on texts and saves it there.
func LoadOrFit(path string, opts Options, texts []string) (*Tokenizer, error) {
	t, err := Load(path)
	if err == nil {
		log.Printf("loaded %s", path)
		return t, nil
	}
	if !isNotExist(err) {
		return nil, err
	}
	t, err = New(opts)
	if err != nil {
		return nil, err
	}
	t.Fit(texts)
	if err := t.Save(path); err != nil {
		return nil, err
	}
	log.Printf("saved %s", path)
	return t, nil
}
