package tree

import (
	"encoding/gob"
	"errors"
	"io"
)

type Regressor struct {
	Tree
}

// NewRegressor returns a configured/initialized regression tree.
// If no options are passed, the returned Regressor will be equivalent to
// the following call:
//
//	reg := NewRegressor(MinSplit(2), MinLeaf(1), MaxDepth(-1), MaxFeatures(-1))
func NewRegressor(options ...func(*Tree)) *Regressor {
	return &Regressor{newTree(options...)}
}

// Fit constructs a tree from the provided features X, and targets Y. Each
// row of Y holds one value per target.
func (r *Regressor) Fit(X [][]float64, Y [][]float64) error {
	inx := make([]int, len(Y))
	for i := 0; i < len(Y); i++ {
		inx[i] = i
	}

	return r.FitInx(X, Y, inx)
}

// FitInx constructs a tree as in Fit, but uses only the examples
// referenced in inx.
func (r *Regressor) FitInx(X [][]float64, Y [][]float64, inx []int) error {
	if len(X) == 0 || len(inx) == 0 {
		return errors.New("tree: no examples to fit")
	}
	if len(X) != len(Y) {
		return errors.New("tree: features and targets have different lengths")
	}
	if len(Y[0]) == 0 {
		return errors.New("tree: no targets to fit")
	}

	if err := r.describe(len(X[0]), len(Y[0])); err != nil {
		return err
	}
	r.v = newVarValuer(Y)
	r.build(X, inx)
	return nil
}

// Predict returns the expected value of every target for each example X.
func (r *Regressor) Predict(X [][]float64) [][]float64 {
	p := make([][]float64, len(X))

	for i := range p {
		p[i] = r.Root.Find(X[i]).Stat.Means()
	}
	return p
}

// VarImp returns an estimate of the importance of the variables used to fit
// the tree.
func (r *Regressor) VarImp() []float64 {
	imp := make([]float64, len(r.Attributes))

	s := new(nodeStack)
	s.Push(r.Root)

	for !s.Empty() {
		n := s.Pop()

		if !n.Leaf {
			imp[n.Test.Attr().Index] += (float64(n.Samples)*n.Impurity -
				float64(n.Then.Samples)*n.Then.Impurity -
				float64(n.Else.Samples)*n.Else.Impurity)

			s.Push(n.Then)
			s.Push(n.Else)
		}
	}
	nSamples := float64(r.Root.Samples)
	total := 0.0
	for i := range imp {
		imp[i] /= nSamples
		total += imp[i]
	}

	// normalize, a tree with no splits has no important variables
	if total > 0 {
		for i := range imp {
			imp[i] /= total
		}
	}

	return imp
}

// Save serializes the Regressor using encoding/gob to an io.Writer.
func (r *Regressor) Save(w io.Writer) error {
	e := gob.NewEncoder(w)
	return e.Encode(r)
}

// Load deserializes the Regressor using encoding/gob from an io.Reader.
func (r *Regressor) Load(rd io.Reader) error {
	d := gob.NewDecoder(rd)
	return d.Decode(r)
}

// lifo stack for walking the fitted tree
type nodeStack []*Node

func (s nodeStack) Empty() bool   { return len(s) == 0 }
func (s *nodeStack) Push(n *Node) { *s = append(*s, n) }
func (s *nodeStack) Pop() *Node {
	d := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return d
}
