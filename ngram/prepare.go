package ngram

import "log"
import "os"
import "path/filepath"
import "github.com/pkg/errors"
import "github.com/neurlang/tweetclass/config"
import "github.com/neurlang/tweetclass/tokenizer"

// TokenizerFile and IndexFile are the cache files kept in the data directory.
const TokenizerFile = "tokenizer.lzw"
const IndexFile = "ngrams.lzw"

// Prepared is a tokenized, n-gram augmented and padded dataset.
type Prepared struct {
	// Data holds one padded row per text
	Data [][]int32

	// WordIndex maps words and n-gram keys to ids
	WordIndex map[string]int

	Index     *Index
	Tokenizer *tokenizer.Tokenizer

	// Features is one above the largest id Data can contain
	Features int
}

// TokenizerOptions derives tokenizer options from the config.
func TokenizerOptions(cfg *config.Config) tokenizer.Options {
	opts := tokenizer.DefaultOptions(cfg.MaxWords)
	opts.OOVToken = cfg.OOVToken
	opts.Normalization = cfg.Normalization
	opts.SpellNumbers = cfg.SpellNumbers
	return opts
}

// Prepare tokenizes texts with the cached tokenizer (fitting and caching one on texts
// when there is none), indexes n-grams the same way, augments and pads.
func Prepare(texts []string, cfg *config.Config) (*Prepared, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "can't create data dir %q", cfg.DataDir)
	}
	log.Printf("tokenizing %d texts", len(texts))
	tokPath := filepath.Join(cfg.DataDir, TokenizerFile)
	tok, err := tokenizer.LoadOrFit(tokPath, TokenizerOptions(cfg), texts)
	if err != nil {
		return nil, err
	}
	if tok.Options() != TokenizerOptions(cfg) {
		return nil, errors.Errorf("tokenizer %q was built for other settings, delete it to rebuild", tokPath)
	}
	sequences := tok.Sequences(texts)
	words := tok.WordIndex()
	log.Printf("found %d unique 1-gram tokens", len(words))

	var index *Index
	if cfg.NgramRange > 1 {
		index, err = loadOrBuildIndex(filepath.Join(cfg.DataDir, IndexFile), sequences, cfg)
		if err != nil {
			return nil, err
		}
		log.Printf("indexed %d n-grams", index.Len())
		sequences = Augment(sequences, index, cfg.NgramRange)
	} else {
		index = NewIndex(cfg.MaxWords, 0)
	}
	log.Printf("now there are %d features", index.MaxFeatures())

	var total, longest int
	for _, s := range sequences {
		total += len(s)
		if len(s) > longest {
			longest = len(s)
		}
	}
	if len(sequences) > 0 {
		log.Printf("average sequence length: %d", total/len(sequences))
	}
	log.Printf("max sequence length: %d", longest)

	return &Prepared{
		Data:      Pad(sequences, cfg.MaxSequenceLength, cfg.Padding, cfg.Truncating),
		WordIndex: index.Merge(words),
		Index:     index,
		Tokenizer: tok,
		Features:  index.MaxFeatures(),
	}, nil
}

func loadOrBuildIndex(path string, sequences [][]int, cfg *config.Config) (*Index, error) {
	index, err := LoadIndex(path)
	if err == nil {
		if index.Start() != cfg.MaxWords+1 || index.Buckets() != expectBuckets(cfg.NgramBuckets) ||
			index.Range() != cfg.NgramRange {
			return nil, errors.Errorf("n-gram index %q was built for other settings, delete it to rebuild", path)
		}
		log.Printf("loaded %s", path)
		return index, nil
	}
	if !os.IsNotExist(errors.Cause(err)) {
		return nil, err
	}
	index = BuildIndex(sequences, cfg.MaxWords, cfg.NgramRange, cfg.NgramBuckets)
	if err := index.Save(path); err != nil {
		return nil, err
	}
	log.Printf("saved %s", path)
	return index, nil
}

func expectBuckets(buckets int) int {
	if buckets <= 0 {
		return 0
	}
	return int(NextPrime(uint64(buckets)))
}
