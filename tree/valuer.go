package tree

// variance valuer for multi-target regression, the impurity of a set is the
// sum of the variances of every target
type varValuer struct {
	Y        [][]float64
	inx      []int
	posLast  int
	nLeft    int
	nRight   int
	iInitial float64
	mean     []float64
	sL, ssL  []float64
	sR, ssR  []float64
}

func newVarValuer(Y [][]float64) *varValuer {
	k := len(Y[0])
	return &varValuer{
		Y:    Y,
		mean: make([]float64, k),
		sL:   make([]float64, k),
		ssL:  make([]float64, k),
		sR:   make([]float64, k),
		ssR:  make([]float64, k),
	}
}

func (c *varValuer) nodeVal() []float64 {
	m := make([]float64, len(c.mean))
	copy(m, c.mean)
	return m
}

func (c *varValuer) init(inx []int) {
	c.inx = inx
	c.iInitial = meanVar(c.Y, c.inx, c.mean)
	c.reset()
}

// meanVar stores the mean of each target in mean and returns the summed
// variance.
func meanVar(Y [][]float64, inx []int, mean []float64) float64 {
	n := float64(len(inx))
	v := 0.0

	for k := range mean {
		var ss, s float64
		for _, i := range inx {
			ss += Y[i][k] * Y[i][k]
			s += Y[i][k]
		}

		mean[k] = s / n
		v += ss/n - mean[k]*mean[k]
	}

	return v
}

func (c *varValuer) reset() {
	for k := range c.mean {
		c.sL[k], c.ssL[k] = 0, 0
		c.sR[k], c.ssR[k] = 0, 0
	}
	c.nRight = len(c.inx)
	c.nLeft = 0

	for _, i := range c.inx {
		for k, y := range c.Y[i] {
			c.sR[k] += y
			c.ssR[k] += y * y
		}
	}

	c.posLast = 0
}

// update moves the examples in inx[posLast:pos] from the right to the left
// side of the split.
func (c *varValuer) update(pos int) {
	for j := c.posLast; j < pos; j++ {
		c.nLeft++
		c.nRight--

		for k, y := range c.Y[c.inx[j]] {
			c.sL[k] += y
			c.ssL[k] += y * y
			c.sR[k] -= y
			c.ssR[k] -= y * y
		}
	}
	c.posLast = pos
}

func (c *varValuer) initialVal() float64 {
	return c.iInitial
}

func (c *varValuer) delta() float64 {
	fracLeft := float64(c.nLeft) / float64(len(c.inx))
	fracRight := float64(c.nRight) / float64(len(c.inx))

	var iL, iR float64
	for k := range c.mean {
		rMean := c.sR[k] / float64(c.nRight)
		iR += c.ssR[k]/float64(c.nRight) - rMean*rMean
		lMean := c.sL[k] / float64(c.nLeft)
		iL += c.ssL[k]/float64(c.nLeft) - lMean*lMean
	}

	return c.iInitial - fracLeft*iL - fracRight*iR
}
