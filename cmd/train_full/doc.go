// Package main trains one model family on all training rows, or on the full
// datasets with -full, and keeps the checkpoint with the best training F1.
package main
