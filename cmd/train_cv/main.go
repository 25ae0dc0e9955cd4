package main

import "flag"
import "fmt"
import "log"

import "github.com/unixpickle/essentials"
import "gonum.org/v1/gonum/mat"

import "github.com/neurlang/tweetclass/classifier"
import "github.com/neurlang/tweetclass/config"
import "github.com/neurlang/tweetclass/datasets"
import "github.com/neurlang/tweetclass/embedding"
import "github.com/neurlang/tweetclass/ngram"
import "github.com/neurlang/tweetclass/trainer"

func main() {
	load := config.Flags(flag.CommandLine)
	family := flag.String("family", "conv", "model family")
	name := flag.String("name", "", "saved file prefix, the family by default")
	resume := flag.Bool("resume", false, "resume training from existing checkpoints")
	pretrained := flag.Bool("pretrained", true, "initialise embeddings from the word vectors")
	significance := flag.Int("significance", 0, "score the progress digest on a sample at this significance (1-99)")
	flag.Parse()

	cfg, err := load()
	if err != nil {
		essentials.Die(err)
	}
	log.Printf("%s, %d threads", config.CPU(), cfg.Threads)

	labels := datasets.NewLabelMap(cfg.Classes)
	data, err := datasets.Load(cfg.DataDir, cfg.Source, cfg.Mode, cfg.TextColumn, cfg.LabelColumn, labels)
	if err != nil {
		essentials.Die(err)
	}
	prepared, err := ngram.Prepare(data.Texts(), cfg)
	if err != nil {
		essentials.Die(err)
	}
	log.Printf("dataset: (%d, %d)", len(prepared.Data), cfg.MaxSequenceLength)

	var matrix *mat.Dense
	if *pretrained {
		matrix, err = embedding.Load(cfg, prepared.WordIndex)
		if err != nil {
			essentials.Die(err)
		}
	}
	build, err := classifier.BuilderFor(cfg, *family, prepared.Features, matrix)
	if err != nil {
		essentials.Die(err)
	}

	scores, err := trainer.TrainCV(cfg, trainer.Options{
		Family:       *family,
		Name:         *name,
		Build:        build,
		Resume:       *resume,
		Significance: byte(*significance),
	}, prepared.Data, data.Labels())
	if err != nil {
		essentials.Die(err)
	}
	fmt.Println(trainer.FormatScores(scores))
}
