package tree

import (
	"encoding/gob"
	"fmt"
	"strings"
)

func init() {
	gob.Register(&NumericTest{})
	gob.Register(&InverseNumericTest{})
	gob.Register(&NominalTest{})
	gob.Register(&SubsetTest{})
}

type AttrKind int

const (
	Numeric AttrKind = iota
	Nominal
)

// Attribute describes one input column. Values is the category table of a
// Nominal attribute: a nominal feature value x is stored as float64(i) and
// means Values[i].
type Attribute struct {
	Name   string
	Index  int
	Kind   AttrKind
	Values []string
}

// category returns the label for the nominal feature value x.
func (a *Attribute) category(x float64) (string, bool) {
	i := int(x)
	if i < 0 || i >= len(a.Values) || float64(i) != x {
		return "", false
	}
	return a.Values[i], true
}

// Node is a node in a regression tree.
//
// A leaf node carries Stat and has no Test. An internal node carries a Test
// and owns exactly two children: Then (child 0) is taken when the test holds,
// Else (child 1) otherwise.
type Node struct {
	Test     Test
	Then     *Node
	Else     *Node
	Stat     Statistic
	Leaf     bool
	Impurity float64
	Samples  int
}

// Child returns child 0 (Then) or child 1 (Else).
func (n *Node) Child(i int) *Node {
	switch i {
	case 0:
		return n.Then
	case 1:
		return n.Else
	}
	return nil
}

// Find returns the leaf reached by the feature vector x.
func (n *Node) Find(x []float64) *Node {
	for !n.Leaf {
		if n.Test.Holds(x) {
			n = n.Then
		} else {
			n = n.Else
		}
	}
	return n
}

// Target is the mean of one target attribute at a leaf.
type Target struct {
	Name string
	Mean float64
}

// Statistic is the prediction of a leaf, one entry per target in the order
// the targets were given to the builder.
type Statistic []Target

// Means returns the predicted value of each target.
func (s Statistic) Means() []float64 {
	m := make([]float64, len(s))
	for i, t := range s {
		m[i] = t.Mean
	}
	return m
}

// Names returns the target names in order.
func (s Statistic) Names() []string {
	n := make([]string, len(s))
	for i, t := range s {
		n[i] = t.Name
	}
	return n
}

// Test is a split test on a single attribute. The set of implementations is
// closed: NumericTest, InverseNumericTest, NominalTest and SubsetTest.
type Test interface {
	Attr() *Attribute
	// Holds reports whether the feature vector x takes the Then branch.
	Holds(x []float64) bool
	String() string
	isTest()
}

// NumericTest holds when the attribute value is greater than Bound.
type NumericTest struct {
	Attribute *Attribute
	Bound     float64
}

func (t *NumericTest) Attr() *Attribute       { return t.Attribute }
func (t *NumericTest) Holds(x []float64) bool { return x[t.Attribute.Index] > t.Bound }
func (t *NumericTest) String() string {
	return fmt.Sprintf("%s > %g", t.Attribute.Name, t.Bound)
}
func (*NumericTest) isTest() {}

// InverseNumericTest holds when the attribute value is at most Bound.
type InverseNumericTest struct {
	Attribute *Attribute
	Bound     float64
}

func (t *InverseNumericTest) Attr() *Attribute       { return t.Attribute }
func (t *InverseNumericTest) Holds(x []float64) bool { return x[t.Attribute.Index] <= t.Bound }
func (t *InverseNumericTest) String() string {
	return fmt.Sprintf("%s <= %g", t.Attribute.Name, t.Bound)
}
func (*InverseNumericTest) isTest() {}

// NominalTest holds when the attribute's category label equals Value.
type NominalTest struct {
	Attribute *Attribute
	Value     string
}

func (t *NominalTest) Attr() *Attribute { return t.Attribute }
func (t *NominalTest) Holds(x []float64) bool {
	c, ok := t.Attribute.category(x[t.Attribute.Index])
	return ok && c == t.Value
}
func (t *NominalTest) String() string {
	return fmt.Sprintf("%s = %s", t.Attribute.Name, t.Value)
}
func (*NominalTest) isTest() {}

// SubsetTest holds when the attribute's category index is one of Values.
//
// Text is the human readable form of the test ("color = red"). It is kept for
// models whose attribute has no category table, where it is the only place the
// category label can be recovered from.
type SubsetTest struct {
	Attribute *Attribute
	Values    []int
	Text      string
}

func (t *SubsetTest) Attr() *Attribute { return t.Attribute }
func (t *SubsetTest) Holds(x []float64) bool {
	v := x[t.Attribute.Index]
	for _, i := range t.Values {
		if float64(i) == v {
			return true
		}
	}
	return false
}
func (t *SubsetTest) String() string {
	if t.Text != "" {
		return t.Text
	}

	labels := make([]string, len(t.Values))
	for i, v := range t.Values {
		if l, ok := t.Attribute.category(float64(v)); ok {
			labels[i] = l
		} else {
			labels[i] = fmt.Sprint(v)
		}
	}
	if len(labels) == 1 {
		return t.Attribute.Name + " = " + labels[0]
	}
	return t.Attribute.Name + " in {" + strings.Join(labels, ",") + "}"
}
func (*SubsetTest) isTest() {}
