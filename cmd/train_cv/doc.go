// Package main cross-validates one model family on the training data. The best
// checkpoint of every fold and the list of fold F1 scores are saved in the family
// directory under the models directory.
//
// Usage:
//
//	train_cv -family lstm -epochs 40
package main
