// Package main prints the cross-validation scores of all model families in order.
package main
