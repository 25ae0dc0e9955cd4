package main

import "flag"
import "fmt"

import "github.com/unixpickle/essentials"

import "github.com/neurlang/tweetclass/config"
import "github.com/neurlang/tweetclass/ensemble"

func main() {
	load := config.Flags(flag.CommandLine)
	normalize := flag.Bool("normalize", false, "divide the scores by their sum")
	flag.Parse()

	cfg, err := load()
	if err != nil {
		essentials.Die(err)
	}
	scores, err := ensemble.Scores(cfg, *normalize)
	if err != nil {
		essentials.Die(err)
	}
	for _, s := range scores {
		fmt.Println(s)
	}
}
