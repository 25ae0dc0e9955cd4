// Package trainer runs the training of classifier families: stratified k-fold
// cross-validation with per fold checkpoints and score files, and training on the
// full data. Epoch callbacks keep the best checkpoint and lower the learning rate
// when the validation F1 stops improving.
package trainer
