// Package main builds the embedding matrix of the prepared vocabulary from
// pretrained word vectors and caches it as a .npy file.
package main
