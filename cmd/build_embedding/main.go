package main

import "flag"
import "fmt"
import "log"

import "github.com/unixpickle/essentials"

import "github.com/neurlang/tweetclass/config"
import "github.com/neurlang/tweetclass/datasets"
import "github.com/neurlang/tweetclass/embedding"
import "github.com/neurlang/tweetclass/ngram"

func main() {
	load := config.Flags(flag.CommandLine)
	quiet := flag.Bool("quiet", false, "don't list the words that could not be added")
	flag.Parse()

	cfg, err := load()
	if err != nil {
		essentials.Die(err)
	}
	if *quiet {
		cfg.PrintErrorWords = false
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
	m, err := embedding.Load(cfg, prepared.WordIndex)
	if err != nil {
		essentials.Die(err)
	}
	r, c := m.Dims()
	fmt.Printf("embedding matrix: (%d, %d)\n", r, c)
}
