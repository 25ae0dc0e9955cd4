// Package main loads a tweet dataset, tokenizes it and adds n-gram features,
// caching the tokenizer and the n-gram index in the data directory.
package main
