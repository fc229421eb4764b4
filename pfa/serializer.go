// pfa writes regression trees as Portable Format for Analytics scoring
// expressions. An internal node becomes
//
//	{"if": {">": ["input.age", 30.0]}, "then": ..., "else": ...}
//
// and a leaf becomes its prediction: the bare mean for a single target, or a
// DependentVariables record for several targets.
package pfa

import (
	"io"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wlattner/pct/tree"
)

// Serializer writes trees to a Generator. It holds no state between calls
// and may be shared by goroutines writing to different generators.
type Serializer struct {
	log         logrus.FieldLogger
	multiSubset bool
}

// Logger sets the logger used to report degraded bound resolution.
func Logger(l logrus.FieldLogger) func(*Serializer) {
	return func(s *Serializer) {
		s.log = l
	}
}

// MultiValueSubsets encodes subset tests with several values as PFA
// a.contains membership tests instead of rejecting them.
func MultiValueSubsets() func(*Serializer) {
	return func(s *Serializer) {
		s.multiSubset = true
	}
}

// NewSerializer returns a Serializer. Without options subset tests must have
// exactly one value and nothing is logged.
func NewSerializer(options ...func(*Serializer)) *Serializer {
	discard := logrus.New()
	discard.Out = io.Discard

	s := &Serializer{log: discard}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Serialize writes the scoring expression for the tree rooted at root. The
// tree is checked before anything is written, so a malformed tree leaves g
// untouched and yields a *MalformedModelError. Errors from g are returned as
// is; the output is then incomplete.
func (s *Serializer) Serialize(root *tree.Node, g Generator) error {
	if err := s.Validate(root); err != nil {
		return err
	}
	return s.expression(root, g)
}

func (s *Serializer) expression(root *tree.Node, g Generator) error {
	if root.Leaf {
		return writePrediction(root.Stat, g)
	}
	return s.branch(root, "root", g)
}

// branch wraps the conditional block of an internal node in an object.
func (s *Serializer) branch(n *tree.Node, path string, g Generator) error {
	if err := g.WriteStartObject(); err != nil {
		return err
	}
	if err := s.visit(n, path, g); err != nil {
		return err
	}
	return g.WriteEndObject()
}

func (s *Serializer) visit(n *tree.Node, path string, g Generator) error {
	c, err := s.condition(n.Test, path)
	if err != nil {
		return err
	}
	if c.degraded {
		s.log.WithFields(logrus.Fields{
			"attribute": c.attr,
			"path":      path,
		}).Debugf("subset bound %q taken from test text", c.str)
	}

	if err := g.WriteFieldName("if"); err != nil {
		return err
	}
	if err := c.write(g); err != nil {
		return err
	}

	if err := g.WriteFieldName("then"); err != nil {
		return err
	}
	if err := s.child(n.Then, path+".then", g); err != nil {
		return err
	}

	if err := g.WriteFieldName("else"); err != nil {
		return err
	}
	return s.child(n.Else, path+".else", g)
}

func (s *Serializer) child(n *tree.Node, path string, g Generator) error {
	if n.Leaf {
		return writePrediction(n.Stat, g)
	}
	return s.branch(n, path, g)
}

func writePrediction(stat tree.Statistic, g Generator) error {
	if len(stat) == 1 {
		return g.WriteNumber(stat[0].Mean)
	}

	if err := g.WriteStartObject(); err != nil {
		return err
	}
	if err := g.WriteFieldName("type"); err != nil {
		return err
	}
	if err := g.WriteString(dependentVariables); err != nil {
		return err
	}
	if err := g.WriteFieldName("new"); err != nil {
		return err
	}
	if err := g.WriteStartObject(); err != nil {
		return err
	}
	for _, t := range stat {
		if err := g.WriteFieldName(t.Name); err != nil {
			return err
		}
		if err := g.WriteNumber(t.Mean); err != nil {
			return err
		}
	}
	if err := g.WriteEndObject(); err != nil {
		return err
	}
	return g.WriteEndObject()
}

// name of the output record of multi-target trees
const dependentVariables = "DependentVariables"

// condition is a resolved split test.
type condition struct {
	symbol   string
	attr     string
	numeric  bool
	num      float64
	str      string
	values   []string // a.contains alternatives
	degraded bool     // str was parsed from the test text
}

func (c condition) write(g Generator) error {
	if err := g.WriteStartObject(); err != nil {
		return err
	}
	if err := g.WriteFieldName(c.symbol); err != nil {
		return err
	}
	if err := g.WriteStartArray(); err != nil {
		return err
	}

	if c.values != nil {
		if err := writeStringArray(c.values, g); err != nil {
			return err
		}
		if err := g.WriteString(c.attr); err != nil {
			return err
		}
	} else {
		if err := g.WriteString(c.attr); err != nil {
			return err
		}
		var err error
		if c.numeric {
			err = g.WriteNumber(c.num)
		} else {
			err = g.WriteString(c.str)
		}
		if err != nil {
			return err
		}
	}

	if err := g.WriteEndArray(); err != nil {
		return err
	}
	return g.WriteEndObject()
}

// writeStringArray writes a PFA array literal of strings.
func writeStringArray(values []string, g Generator) error {
	if err := g.WriteStartObject(); err != nil {
		return err
	}
	if err := g.WriteFieldName("type"); err != nil {
		return err
	}
	if err := g.WriteStartObject(); err != nil {
		return err
	}
	if err := g.WriteFieldName("type"); err != nil {
		return err
	}
	if err := g.WriteString("array"); err != nil {
		return err
	}
	if err := g.WriteFieldName("items"); err != nil {
		return err
	}
	if err := g.WriteString("string"); err != nil {
		return err
	}
	if err := g.WriteEndObject(); err != nil {
		return err
	}
	if err := g.WriteFieldName("value"); err != nil {
		return err
	}
	if err := g.WriteStartArray(); err != nil {
		return err
	}
	for _, v := range values {
		if err := g.WriteString(v); err != nil {
			return err
		}
	}
	if err := g.WriteEndArray(); err != nil {
		return err
	}
	return g.WriteEndObject()
}

// nilTest reports whether t is a nil pointer to one of the test types.
func nilTest(t tree.Test) bool {
	switch t := t.(type) {
	case *tree.NumericTest:
		return t == nil
	case *tree.InverseNumericTest:
		return t == nil
	case *tree.NominalTest:
		return t == nil
	case *tree.SubsetTest:
		return t == nil
	}
	return false
}

// validName reports whether name can be used as an Avro field name, which
// also keeps "input." + name a single field reference.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func inputRef(a *tree.Attribute) string {
	return "input." + a.Name
}

// condition resolves the comparison written for test t.
func (s *Serializer) condition(t tree.Test, path string) (condition, error) {
	if t == nil || nilTest(t) {
		return condition{}, malformed(path, "internal node without a test")
	}
	switch t.(type) {
	case *tree.NumericTest, *tree.InverseNumericTest, *tree.NominalTest, *tree.SubsetTest:
	default:
		return condition{}, malformed(path, "unsupported test type %T", t)
	}

	a := t.Attr()
	if a == nil {
		return condition{}, malformed(path, "%T has no attribute", t)
	}
	if !validName(a.Name) {
		return condition{}, malformed(path, "attribute name %q is not a valid PFA field name", a.Name)
	}

	switch t := t.(type) {
	case *tree.NumericTest:
		if !finite(t.Bound) {
			return condition{}, malformed(path, "non-finite bound on %s", a.Name)
		}
		return condition{symbol: ">", attr: inputRef(a), numeric: true, num: t.Bound}, nil
	case *tree.InverseNumericTest:
		if !finite(t.Bound) {
			return condition{}, malformed(path, "non-finite bound on %s", a.Name)
		}
		return condition{symbol: "<=", attr: inputRef(a), numeric: true, num: t.Bound}, nil
	case *tree.NominalTest:
		return condition{symbol: "==", attr: inputRef(a), str: t.Value}, nil
	case *tree.SubsetTest:
		return s.subsetCondition(t, path)
	default:
		return condition{}, malformed(path, "unsupported test type %T", t)
	}
}

func (s *Serializer) subsetCondition(t *tree.SubsetTest, path string) (condition, error) {
	a := t.Attribute

	switch {
	case len(t.Values) == 0:
		return condition{}, malformed(path, "subset test on %s has no values", a.Name)

	case len(t.Values) == 1:
		bound, degraded, err := subsetBound(t, path)
		if err != nil {
			return condition{}, err
		}
		return condition{symbol: "==", attr: inputRef(a), str: bound, degraded: degraded}, nil

	case !s.multiSubset:
		return condition{}, malformed(path, "subset test on %s has %d values, only single value subsets are supported",
			a.Name, len(t.Values))
	}

	if a.Kind != tree.Nominal || len(a.Values) == 0 {
		return condition{}, malformed(path, "subset test on %s has several values but no category table", a.Name)
	}
	values := make([]string, len(t.Values))
	for i, v := range t.Values {
		if v < 0 || v >= len(a.Values) {
			return condition{}, malformed(path, "category index %d out of range for %s", v, a.Name)
		}
		values[i] = a.Values[v]
	}
	return condition{symbol: "a.contains", attr: inputRef(a), values: values}, nil
}

// subsetBound resolves the category label of a single value subset test.
// The category table of a nominal attribute is authoritative. Without one
// the label is recovered from the test text, the part after the first "=";
// degraded reports that this fallback was taken.
func subsetBound(t *tree.SubsetTest, path string) (string, bool, error) {
	a := t.Attribute
	if a.Kind == tree.Nominal && len(a.Values) > 0 {
		i := t.Values[0]
		if i < 0 || i >= len(a.Values) {
			return "", false, malformed(path, "category index %d out of range for %s", i, a.Name)
		}
		return a.Values[i], false, nil
	}

	text := t.Text
	eq := strings.Index(text, "=")
	if eq < 0 {
		return "", false, malformed(path, "cannot resolve subset value of %s from %q", a.Name, text)
	}
	return strings.TrimSpace(text[eq+1:]), true, nil
}
