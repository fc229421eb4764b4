// tree implements multi-target regression trees in the style of predictive
// clustering trees: a node's impurity is the sum of the variances of all
// targets, and every leaf predicts the mean of each target.
//
// The builder follows Algorithm 3.2 of
// Louppe, G. (2014) "Understanding Random Forests: From Theory to Practice" (PhD thesis)
// http://arxiv.org/abs/1407.7502
// extended with one-vs-rest splits on nominal attributes.
package tree

import (
	"fmt"
	"math/rand"
	"time"
)

// Tree holds the configuration and the fitted nodes of a regression tree.
type Tree struct {
	Root        *Node
	MinSplit    int // min node size for split
	MinLeaf     int // min leaf size for split
	MaxDepth    int // max depth
	MaxFeatures int // number of features to consider for splitting
	Attributes  []*Attribute
	Targets     []string
	nFeatures   int
	randState   *rand.Rand
	v           *varValuer
}

// MinSplit limits the size for a node to be split vs marked as a leaf
func MinSplit(n int) func(*Tree) {
	return func(t *Tree) {
		t.MinSplit = n
	}
}

// MinLeaf limits the size of a child/leaf node for a split
// threshold to be considered
func MinLeaf(n int) func(*Tree) {
	return func(t *Tree) {
		t.MinLeaf = n
	}
}

// MaxDepth limits the depth of the fitted tree. Specifying -1 for n will
// grow a full tree, subject to MinLeaf and MinSplit constraints.
func MaxDepth(n int) func(*Tree) {
	return func(t *Tree) {
		t.MaxDepth = n
	}
}

// MaxFeatures limits the number of features considered for splitting at each
// step. If not provided or -1 then all features are considered.
func MaxFeatures(n int) func(*Tree) {
	return func(t *Tree) {
		t.MaxFeatures = n
	}
}

// RandState sets the seed for the random number generator
func RandState(n int64) func(*Tree) {
	return func(t *Tree) {
		t.randState = rand.New(rand.NewSource(n))
	}
}

// Attributes describes the columns of X. Without it every column is a
// numeric attribute named X1, X2, ...
func Attributes(attrs []*Attribute) func(*Tree) {
	return func(t *Tree) {
		t.Attributes = attrs
	}
}

// Targets names the columns of Y. Without it the targets are named
// Y1, Y2, ...
func Targets(names []string) func(*Tree) {
	return func(t *Tree) {
		t.Targets = names
	}
}

func newTree(options ...func(*Tree)) Tree {
	t := Tree{
		MinSplit:    2,
		MinLeaf:     1,
		MaxDepth:    -1,
		MaxFeatures: -1,
		randState:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, opt := range options {
		opt(&t)
	}

	return t
}

// describe fills in default attribute and target names for data with
// nFeatures columns and nTargets targets.
func (t *Tree) describe(nFeatures, nTargets int) error {
	t.nFeatures = nFeatures

	if t.Attributes == nil {
		for i := 0; i < nFeatures; i++ {
			t.Attributes = append(t.Attributes, &Attribute{Name: fmt.Sprintf("X%d", i+1), Index: i})
		}
	}
	if len(t.Attributes) != nFeatures {
		return fmt.Errorf("tree: %d attributes for %d feature columns", len(t.Attributes), nFeatures)
	}
	for i, a := range t.Attributes {
		if a.Index != i {
			return fmt.Errorf("tree: attribute %s has index %d, expected %d", a.Name, a.Index, i)
		}
	}

	if t.Targets == nil {
		for i := 0; i < nTargets; i++ {
			t.Targets = append(t.Targets, fmt.Sprintf("Y%d", i+1))
		}
	}
	if len(t.Targets) != nTargets {
		return fmt.Errorf("tree: %d target names for %d target columns", len(t.Targets), nTargets)
	}
	seen := make(map[string]bool)
	for _, name := range t.Targets {
		if seen[name] {
			return fmt.Errorf("tree: duplicate target name %q", name)
		}
		seen[name] = true
	}

	return nil
}

// statistic returns the leaf prediction for the target means m.
func (t *Tree) statistic(m []float64) Statistic {
	s := make(Statistic, len(m))
	for i := range m {
		s[i] = Target{Name: t.Targets[i], Mean: m[i]}
	}
	return s
}
