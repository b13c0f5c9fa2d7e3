package stats

// Confusion counts classification outcomes indexed by (predicted, observed)
// category.
type Confusion struct {
	dim    int
	count  uint64
	counts []uint64
}

func NewConfusion(dim int) *Confusion {
	if dim < 0 {
		dim = 0
	}
	return &Confusion{dim: dim, counts: make([]uint64, dim*dim)}
}

func (c *Confusion) Dim() int { return c.dim }

// Count is the total number of recorded outcomes.
func (c *Confusion) Count() uint64 { return c.count }

func (c *Confusion) Empty() bool { return c.count == 0 }

// At returns the number of rows of category observed predicted as predicted.
func (c *Confusion) At(predicted, observed int) uint64 {
	return c.counts[predicted*c.dim+observed]
}

func (c *Confusion) Add(predicted, observed int, n uint64) {
	c.counts[predicted*c.dim+observed] += n
	c.count += n
}

// Sub removes up to n outcomes from a cell, saturating at zero.
func (c *Confusion) Sub(predicted, observed int, n uint64) {
	cell := &c.counts[predicted*c.dim+observed]
	n = min(n, *cell)
	*cell -= n
	c.count -= n
}

func (c *Confusion) TruePositives(cat int) uint64 {
	return c.At(cat, cat)
}

func (c *Confusion) FalsePositives(cat int) uint64 {
	var sum uint64
	for i := 0; i < c.dim; i++ {
		sum += c.At(cat, i)
	}
	return sum - c.At(cat, cat)
}

func (c *Confusion) FalseNegatives(cat int) uint64 {
	var sum uint64
	for i := 0; i < c.dim; i++ {
		sum += c.At(i, cat)
	}
	return sum - c.At(cat, cat)
}

func (c *Confusion) TrueNegatives(cat int) uint64 {
	return c.count - (c.FalsePositives(cat) + c.FalseNegatives(cat) + c.TruePositives(cat))
}

// Accuracy is the share of correct predictions, 0 when empty.
func (c *Confusion) Accuracy() float64 {
	if c.count == 0 {
		return 0
	}
	var diag uint64
	for i := 0; i < c.dim; i++ {
		diag += c.At(i, i)
	}
	return float64(diag) / float64(c.count)
}

// AccuracyOf treats cat as the positive class of a binary problem.
func (c *Confusion) AccuracyOf(cat int) float64 {
	if c.count == 0 {
		return 0
	}
	return float64(c.TruePositives(cat)+c.TrueNegatives(cat)) / float64(c.count)
}

// TSS is the true skill statistic of cat taken as the positive class:
// (tp·tn − fp·fn) / ((tp+fn)(fp+tn)). It is 0 when either the positive or
// the negative class was never observed.
func (c *Confusion) TSS(cat int) float64 {
	tp := float64(c.TruePositives(cat))
	tn := float64(c.TrueNegatives(cat))
	fp := float64(c.FalsePositives(cat))
	fn := float64(c.FalseNegatives(cat))
	denom := (tp + fn) * (fp + tn)
	if denom == 0 {
		return 0
	}
	return (tp*tn - fp*fn) / denom
}
