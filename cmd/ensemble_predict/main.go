package main

import "flag"
import "fmt"
import "log"
import "os"
import "path/filepath"

import "github.com/pkg/errors"
import "github.com/unixpickle/essentials"
import "gonum.org/v1/gonum/mat"

import "github.com/neurlang/tweetclass/classifier"
import "github.com/neurlang/tweetclass/config"
import "github.com/neurlang/tweetclass/datasets"
import "github.com/neurlang/tweetclass/ensemble"
import "github.com/neurlang/tweetclass/metrics"
import "github.com/neurlang/tweetclass/ngram"

func main() {
	load := config.Flags(flag.CommandLine)
	save := flag.String("save", "predictions", "directory for the averaged predictions")
	normalize := flag.Bool("normalize", false, "divide the scores by their sum")
	flag.Parse()

	cfg, err := load()
	if err != nil {
		essentials.Die(err)
	}
	var modeSet bool
	flag.Visit(func(f *flag.Flag) { modeSet = modeSet || f.Name == "mode" })
	if !modeSet {
		cfg.Mode = "test"
	}
	log.Printf("%s, %d threads", config.CPU(), cfg.Threads)

	tok := filepath.Join(cfg.DataDir, ngram.TokenizerFile)
	if _, err := os.Stat(tok); err != nil {
		essentials.Die(errors.Wrap(err, "train first, no cached tokenizer"))
	}

	labels := datasets.NewLabelMap(cfg.Classes)
	labeled, err := datasets.Labeled(cfg.DataDir, cfg.Source, cfg.Mode, cfg.LabelColumn)
	if err != nil {
		essentials.Die(err)
	}
	labelColumn := cfg.LabelColumn
	if !labeled {
		log.Printf("no %q column, predicting without a report", labelColumn)
		labelColumn = ""
	}
	data, err := datasets.Load(cfg.DataDir, cfg.Source, cfg.Mode, cfg.TextColumn, labelColumn, labels)
	if err != nil {
		essentials.Die(err)
	}
	prepared, err := ngram.Prepare(data.Texts(), cfg)
	if err != nil {
		essentials.Die(err)
	}

	var builders []classifier.Builder
	for _, family := range cfg.FamilyNames() {
		build, err := classifier.BuilderFor(cfg, family, prepared.Features, nil)
		if err != nil {
			essentials.Die(err)
		}
		builders = append(builders, build)
	}
	families, scores, err := ensemble.Predictions(cfg, builders, prepared.Data, *save, *normalize)
	if err != nil {
		essentials.Die(err)
	}
	fmt.Println("scores:", scores)

	vote, err := ensemble.WeightedVote(families, scores)
	if err != nil {
		essentials.Die(err)
	}
	if labeled {
		report(families, vote, data.Labels(), labels)
	}
}

func report(families []ensemble.Family, vote *mat.Dense, truth []int, labels *datasets.LabelMap) {
	for _, f := range families {
		pred := metrics.Argmax(f.Mean)
		fmt.Printf("%s: accuracy %0.4f f1 %0.4f\n", f.Name,
			metrics.Accuracy(truth, pred), metrics.F1Macro(truth, pred, labels.Len()))
	}
	pred := metrics.Argmax(vote)
	fmt.Printf("\nensemble accuracy: %0.4f\n", metrics.Accuracy(truth, pred))
	fmt.Printf("ensemble f1: %0.4f\n\n", metrics.F1Macro(truth, pred, labels.Len()))
	fmt.Println(metrics.ClassificationReport(truth, pred, labels.Names()))
	fmt.Println(mat.Formatted(metrics.ConfusionMatrix(truth, pred, labels.Len())))
}
