package trainer

import "log"
import "os"

import "github.com/pkg/errors"

import "github.com/neurlang/tweetclass/classifier"

// Resume loads the weights at path into m when resume is set. A missing file
// starts from fresh weights.
func Resume(m classifier.Model, resume bool, path string) error {
	if !resume {
		return nil
	}
	err := m.LoadWeights(path)
	if err == nil {
		log.Printf("resuming from %s", path)
		return nil
	}
	if os.IsNotExist(errors.Cause(err)) {
		log.Printf("nothing to resume at %s", path)
		return nil
	}
	return err
}
