// Package config holds the settings shared by the data preparation, training and ensembling commands.
package config

import "os"
import "runtime"
import "github.com/klauspost/cpuid/v2"
import "github.com/pkg/errors"
import "gopkg.in/yaml.v3"

// Families is the fixed, ordered list of model families making up the ensemble.
var Families = []string{"conv", "n_conv", "lstm", "bidirectional_lstm", "multiplicative_lstm"}

// Architecture describes the network trained for one model family.
type Architecture struct {
	// Pooling is mean, max or meanmax
	Pooling string `yaml:"pooling"`

	// Hidden is the width of the ReLU layer between pooling and softmax, 0 disables it
	Hidden int `yaml:"hidden"`

	// Trainable reports whether the embedding table is updated during training
	Trainable bool `yaml:"trainable"`

	LearningRate float64 `yaml:"learning_rate"`
}

// Family binds a family directory name to its architecture.
type Family struct {
	Name         string       `yaml:"name"`
	Architecture Architecture `yaml:"architecture"`
}

// Config is the full configuration.
type Config struct {
	DataDir   string `yaml:"data_dir"`
	ModelsDir string `yaml:"models_dir"`

	// Source is obama, romney or full; Mode is train, test or full
	Source string `yaml:"source"`
	Mode   string `yaml:"mode"`

	TextColumn  string `yaml:"text_column"`
	LabelColumn string `yaml:"label_column"`
	Classes     []int  `yaml:"classes"`

	MaxWords          int    `yaml:"max_words"`
	MaxSequenceLength int    `yaml:"max_sequence_length"`
	NgramRange        int    `yaml:"ngram_range"`
	NgramBuckets      int    `yaml:"ngram_buckets"`
	Padding           string `yaml:"padding"`
	Truncating        string `yaml:"truncating"`

	Normalization string `yaml:"normalization"`
	SpellNumbers  bool   `yaml:"spell_numbers"`
	OOVToken      string `yaml:"oov_token"`

	EmbeddingPath   string `yaml:"embedding_path"`
	EmbeddingDim    int    `yaml:"embedding_dim"`
	PrintErrorWords bool   `yaml:"print_error_words"`

	KFolds    int `yaml:"k_folds"`
	Epochs    int `yaml:"epochs"`
	BatchSize int `yaml:"batch_size"`
	Seed      int64 `yaml:"seed"`

	CheckpointExt string `yaml:"checkpoint_ext"`

	Families []Family `yaml:"families"`

	Threads int `yaml:"threads"`
}

var defaultArchitectures = map[string]Architecture{
	"conv":                {Pooling: "max", Hidden: 0, Trainable: true},
	"n_conv":              {Pooling: "max", Hidden: 64, Trainable: true},
	"lstm":                {Pooling: "mean", Hidden: 0, Trainable: true},
	"bidirectional_lstm":  {Pooling: "meanmax", Hidden: 0, Trainable: true},
	"multiplicative_lstm": {Pooling: "meanmax", Hidden: 64, Trainable: true},
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{
		DataDir:           "data",
		ModelsDir:         "models",
		Source:            "full",
		Mode:              "train",
		TextColumn:        "text",
		LabelColumn:       "label",
		Classes:           []int{-1, 0, 1},
		MaxWords:          16000,
		MaxSequenceLength: 140,
		NgramRange:        2,
		Padding:           "pre",
		Truncating:        "pre",
		EmbeddingPath:     "data/glove.6B.300d.txt",
		EmbeddingDim:      300,
		PrintErrorWords:   true,
		KFolds:            3,
		Epochs:            40,
		BatchSize:         100,
		Seed:              1000,
		CheckpointExt:     ".lzw",
		Threads:           DefaultThreads(),
	}
	for _, name := range Families {
		c.Families = append(c.Families, Family{Name: name, Architecture: DefaultArchitecture(name)})
	}
	return c
}

// DefaultArchitecture is the built-in architecture of a family, mean pooling without
// a hidden layer for names it doesn't know.
func DefaultArchitecture(name string) Architecture {
	arch, ok := defaultArchitectures[name]
	if !ok {
		arch = Architecture{Pooling: "mean", Trainable: true}
	}
	arch.LearningRate = 1e-3
	return arch
}

// UnmarshalYAML starts a family from its default architecture, so a file only needs
// to name the settings it changes.
func (f *Family) UnmarshalYAML(value *yaml.Node) error {
	var named struct {
		Name string `yaml:"name"`
	}
	if err := value.Decode(&named); err != nil {
		return err
	}
	type plain Family
	p := plain{Name: named.Name, Architecture: DefaultArchitecture(named.Name)}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*f = Family(p)
	return nil
}

// DefaultThreads reports the logical core count.
func DefaultThreads() int {
	if cpuid.CPU.LogicalCores > 0 {
		return cpuid.CPU.LogicalCores
	}
	return runtime.NumCPU()
}

// CPU describes the processor for the startup banner.
func CPU() string {
	if cpuid.CPU.BrandName == "" {
		return runtime.GOARCH
	}
	return cpuid.CPU.BrandName
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, c.Validate()
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't read config %q", path)
	}
	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, errors.Wrapf(err, "can't parse config %q", path)
	}
	for i := range c.Families {
		if c.Families[i].Architecture.LearningRate == 0 {
			c.Families[i].Architecture.LearningRate = 1e-3
		}
	}
	if c.Threads <= 0 {
		c.Threads = DefaultThreads()
	}
	return c, c.Validate()
}

// Validate reports the first setting that can't work.
func (c *Config) Validate() error {
	switch {
	case c.MaxWords <= 0:
		return errors.Errorf("max_words must be positive, got %d", c.MaxWords)
	case c.MaxSequenceLength <= 0:
		return errors.Errorf("max_sequence_length must be positive, got %d", c.MaxSequenceLength)
	case c.NgramRange < 1:
		return errors.Errorf("ngram_range must be at least 1, got %d", c.NgramRange)
	case c.NgramBuckets < 0:
		return errors.Errorf("ngram_buckets can't be negative, got %d", c.NgramBuckets)
	case c.KFolds < 2:
		return errors.Errorf("k_folds must be at least 2, got %d", c.KFolds)
	case c.Epochs <= 0:
		return errors.Errorf("epochs must be positive, got %d", c.Epochs)
	case c.BatchSize <= 0:
		return errors.Errorf("batch_size must be positive, got %d", c.BatchSize)
	case c.EmbeddingDim <= 0:
		return errors.Errorf("embedding_dim must be positive, got %d", c.EmbeddingDim)
	case len(c.Classes) < 2:
		return errors.Errorf("need at least two classes, got %v", c.Classes)
	case len(c.Families) == 0:
		return errors.New("no model families configured")
	case c.CheckpointExt == "":
		return errors.New("checkpoint_ext can't be empty")
	}
	var seen = make(map[string]struct{})
	for _, f := range c.Families {
		if f.Name == "" {
			return errors.New("model family without a name")
		}
		if _, ok := seen[f.Name]; ok {
			return errors.Errorf("duplicate model family %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		switch f.Architecture.Pooling {
		case "mean", "max", "meanmax":
		default:
			return errors.Errorf("family %q: unknown pooling %q", f.Name, f.Architecture.Pooling)
		}
		if f.Architecture.Hidden < 0 {
			return errors.Errorf("family %q: negative hidden width", f.Name)
		}
	}
	for _, p := range []string{c.Padding, c.Truncating} {
		if p != "pre" && p != "post" {
			return errors.Errorf("padding and truncating must be pre or post, got %q", p)
		}
	}
	return nil
}

// Family looks up a configured family by name.
func (c *Config) Family(name string) (Family, error) {
	for _, f := range c.Families {
		if f.Name == name {
			return f, nil
		}
	}
	return Family{}, errors.Errorf("unknown model family %q", name)
}

// FamilyNames lists the configured families in order.
func (c *Config) FamilyNames() (o []string) {
	for _, f := range c.Families {
		o = append(o, f.Name)
	}
	return
}
