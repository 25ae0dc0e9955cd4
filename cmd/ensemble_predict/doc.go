// Package main predicts the test data with every fold checkpoint of every model
// family, saves the per family averages as .npy files and reports the score
// weighted vote of the whole ensemble against the test labels.
//
// The tokenizer and n-gram index cached by training are reused, so test rows get the
// ids the models were trained with.
package main
