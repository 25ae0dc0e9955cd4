package main

import "flag"
import "fmt"
import "log"
import "os"

import "github.com/unixpickle/essentials"

import "github.com/neurlang/tweetclass/config"
import "github.com/neurlang/tweetclass/datasets"
import "github.com/neurlang/tweetclass/ngram"

func main() {
	load := config.Flags(flag.CommandLine)
	flag.Parse()

	cfg, err := load()
	if err != nil {
		essentials.Die(err)
	}
	log.Printf("%s, %d threads", config.CPU(), cfg.Threads)

	labels := datasets.NewLabelMap(cfg.Classes)
	log.Printf("loading %s %s data", cfg.Source, cfg.Mode)
	data, err := datasets.Load(cfg.DataDir, cfg.Source, cfg.Mode, cfg.TextColumn, cfg.LabelColumn, labels)
	if err != nil {
		essentials.Die(err)
	}
	prepared, err := ngram.Prepare(data.Texts(), cfg)
	if err != nil {
		essentials.Die(err)
	}

	fmt.Fprintf(os.Stdout, "data shape: (%d, %d) int32\n", len(prepared.Data), cfg.MaxSequenceLength)
	fmt.Fprintf(os.Stdout, "features: %d\n", prepared.Features)
	fmt.Fprintf(os.Stdout, "labels: %v\n", data.Counts(labels.Len()))
	for i := 0; i < 2 && i < len(prepared.Data); i++ {
		fmt.Println(prepared.Data[i])
	}
}
