package config

import "flag"
import "strconv"
import "github.com/pkg/errors"

// Flags registers the settings shared by all commands on fs. The returned loader
// reads the -config file over the defaults and applies the flags that were set.
func Flags(fs *flag.FlagSet) func() (*Config, error) {
	path := fs.String("config", "", "YAML configuration file")
	fs.String("data", "", "data directory")
	fs.String("models", "", "models directory")
	fs.String("source", "", "dataset: obama, romney or full")
	fs.String("mode", "", "dataset files: train, test or full")
	fs.String("embedding", "", "pretrained word vectors file")
	fs.Int("max_words", 0, "vocabulary size")
	fs.Int("max_sequence_length", 0, "padded sequence length")
	fs.Int("ngram_range", 0, "largest n-gram order")
	fs.Int("epochs", 0, "training epochs")
	fs.Int("batch_size", 0, "training batch size")
	fs.Int("k_folds", 0, "cross-validation folds")
	fs.Int64("seed", 0, "random seed")
	fs.Int("threads", 0, "worker goroutines")

	return func() (*Config, error) {
		c, err := Load(*path)
		if err != nil {
			return nil, err
		}
		fs.Visit(func(f *flag.Flag) {
			if err != nil {
				return
			}
			err = c.set(f.Name, f.Value.String())
		})
		if err != nil {
			return nil, err
		}
		return c, c.Validate()
	}
}

func (c *Config) set(name, value string) error {
	var strs = map[string]*string{
		"data":      &c.DataDir,
		"models":    &c.ModelsDir,
		"source":    &c.Source,
		"mode":      &c.Mode,
		"embedding": &c.EmbeddingPath,
	}
	var ints = map[string]*int{
		"max_words":           &c.MaxWords,
		"max_sequence_length": &c.MaxSequenceLength,
		"ngram_range":         &c.NgramRange,
		"epochs":              &c.Epochs,
		"batch_size":          &c.BatchSize,
		"k_folds":             &c.KFolds,
		"threads":             &c.Threads,
	}
	if p, ok := strs[name]; ok {
		*p = value
		return nil
	}
	if p, ok := ints[name]; ok {
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "-%s", name)
		}
		*p = n
		return nil
	}
	if name == "seed" {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return errors.Wrap(err, "-seed")
		}
		c.Seed = n
	}
	return nil
}
