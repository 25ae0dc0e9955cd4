package trainer

import "log"
import "math"
import "github.com/neurlang/tweetclass/classifier"

// Monitored is the figure the callbacks watch: the validation F1, or the training F1
// when there is no validation data.
func Monitored(logs classifier.Logs) float64 {
	if logs.HasVal {
		return logs.ValF1
	}
	return logs.F1
}

// Checkpoint saves the weights whenever the monitored F1 beats the best seen so far.
type Checkpoint struct {
	Path    string
	Best    float64
	Saves   int
	Verbose bool
}

// NewCheckpoint makes a checkpoint saving to path.
func NewCheckpoint(path string) *Checkpoint {
	return &Checkpoint{Path: path, Best: math.Inf(-1), Verbose: true}
}

// EpochEnd implements classifier.Callback.
func (c *Checkpoint) EpochEnd(m classifier.Model, logs classifier.Logs) error {
	current := Monitored(logs)
	if !(current > c.Best) {
		if c.Verbose {
			log.Printf("epoch %d: f1 did not improve from %.5f", logs.Epoch, c.Best)
		}
		return nil
	}
	if c.Verbose {
		log.Printf("epoch %d: f1 improved from %.5f to %.5f, saving to %s", logs.Epoch, c.Best, current, c.Path)
	}
	c.Best = current
	c.Saves++
	return m.SaveWeights(c.Path)
}

// ReduceLROnPlateau multiplies the learning rate by Factor when the monitored F1 has
// not improved by more than MinDelta for Patience epochs, then waits Cooldown epochs
// before counting again. The rate never drops below MinLR.
type ReduceLROnPlateau struct {
	Factor   float64
	Patience int
	MinDelta float64
	Cooldown int
	MinLR    float64
	Verbose  bool

	best            float64
	wait            int
	cooldownCounter int
}

// NewReduceLROnPlateau uses factor 0.8, patience 5, min delta 1e-4, cooldown 5 and
// min lr 1e-6.
func NewReduceLROnPlateau() *ReduceLROnPlateau {
	r := &ReduceLROnPlateau{Factor: 0.8, Patience: 5, MinDelta: 1e-4, Cooldown: 5, MinLR: 1e-6, Verbose: true}
	r.Reset()
	return r
}

// Reset forgets the best value and the counters.
func (r *ReduceLROnPlateau) Reset() {
	r.best = math.Inf(-1)
	r.wait = 0
	r.cooldownCounter = 0
}

func (r *ReduceLROnPlateau) inCooldown() bool {
	return r.cooldownCounter > 0
}

// EpochEnd implements classifier.Callback.
func (r *ReduceLROnPlateau) EpochEnd(m classifier.Model, logs classifier.Logs) error {
	current := Monitored(logs)
	if r.inCooldown() {
		r.cooldownCounter--
		r.wait = 0
	}
	if current > r.best+r.MinDelta {
		r.best = current
		r.wait = 0
		return nil
	}
	if r.inCooldown() {
		return nil
	}
	r.wait++
	if r.wait < r.Patience {
		return nil
	}
	if old := m.LearningRate(); old > r.MinLR {
		lr := math.Max(old*r.Factor, r.MinLR)
		m.SetLearningRate(lr)
		if r.Verbose {
			log.Printf("epoch %d: reducing learning rate to %g", logs.Epoch, lr)
		}
		r.cooldownCounter = r.Cooldown
		r.wait = 0
	}
	return nil
}

// Progress logs every epoch with the run id and the digest of the validation predictions.
type Progress struct {
	Run      string
	Fold     int
	Evaluate func() (float64, [32]byte)
}

// EpochEnd implements classifier.Callback.
func (p *Progress) EpochEnd(m classifier.Model, logs classifier.Logs) error {
	var digest [32]byte
	if p.Evaluate != nil {
		_, digest = p.Evaluate()
	}
	log.Printf("run %s fold %d epoch %d loss %.4f acc %.4f f1 %.4f val_loss %.4f val_acc %.4f val_f1 %.4f lr %g %x",
		p.Run, p.Fold, logs.Epoch, logs.Loss, logs.Acc, logs.F1, logs.ValLoss, logs.ValAcc, logs.ValF1,
		logs.LearningRate, digest[:8])
	return nil
}
