package pfa

import "github.com/wlattner/pct/tree"

// Document is a complete PFA scoring engine for one tree.
type Document struct {
	// Name of the engine, "pct" when empty.
	Name string
	// Attributes declares the input record. Every attribute tested in Root
	// must be listed.
	Attributes []*tree.Attribute
	// Targets names the predicted values in leaf order. When nil the
	// targets of the first leaf are used.
	Targets []string
	Root    *tree.Node
}

// WriteDocument writes
//
//	{"name": ..., "input": {...}, "output": ..., "action": [<tree>]}
//
// The input record has a double field for each numeric attribute and a
// string field for each nominal one. A single target tree outputs a double,
// a multi-target tree a DependentVariables record with one double field per
// target. Like Serialize, nothing is written when the document is malformed.
func (s *Serializer) WriteDocument(d Document, g Generator) error {
	if err := s.Validate(d.Root); err != nil {
		return err
	}

	targets := d.Targets
	if targets == nil {
		targets = firstLeaf(d.Root).Stat.Names()
	}
	for _, t := range targets {
		if !validName(t) {
			return malformed("root", "target name %q is not a valid PFA field name", t)
		}
	}
	for _, a := range d.Attributes {
		if !validName(a.Name) {
			return malformed("root", "input name %q is not a valid PFA field name", a.Name)
		}
	}
	if err := checkTargets(d.Root, targets, "root"); err != nil {
		return err
	}
	if err := checkInputs(d.Root, d.Attributes, "root"); err != nil {
		return err
	}

	name := d.Name
	if name == "" {
		name = "pct"
	}

	if err := g.WriteStartObject(); err != nil {
		return err
	}
	if err := writeStringField(g, "name", name); err != nil {
		return err
	}
	if err := g.WriteFieldName("input"); err != nil {
		return err
	}
	if err := writeInputType(g, d.Attributes); err != nil {
		return err
	}
	if err := g.WriteFieldName("output"); err != nil {
		return err
	}
	if err := writeOutputType(g, targets); err != nil {
		return err
	}
	if err := g.WriteFieldName("action"); err != nil {
		return err
	}
	if err := g.WriteStartArray(); err != nil {
		return err
	}
	if err := s.expression(d.Root, g); err != nil {
		return err
	}
	if err := g.WriteEndArray(); err != nil {
		return err
	}
	return g.WriteEndObject()
}

func firstLeaf(n *tree.Node) *tree.Node {
	for !n.Leaf {
		n = n.Then
	}
	return n
}

func checkTargets(n *tree.Node, targets []string, path string) error {
	if n.Leaf {
		if len(n.Stat) != len(targets) {
			return malformed(path, "leaf predicts %d targets, expected %d", len(n.Stat), len(targets))
		}
		for i, t := range n.Stat {
			if t.Name != targets[i] {
				return malformed(path, "leaf target %d is %q, expected %q", i, t.Name, targets[i])
			}
		}
		return nil
	}
	if err := checkTargets(n.Then, targets, path+".then"); err != nil {
		return err
	}
	return checkTargets(n.Else, targets, path+".else")
}

func checkInputs(n *tree.Node, attrs []*tree.Attribute, path string) error {
	if n.Leaf {
		return nil
	}
	name := n.Test.Attr().Name
	found := false
	for _, a := range attrs {
		if a.Name == name {
			found = true
			break
		}
	}
	if !found {
		return malformed(path, "attribute %s is not declared as input", name)
	}
	if err := checkInputs(n.Then, attrs, path+".then"); err != nil {
		return err
	}
	return checkInputs(n.Else, attrs, path+".else")
}

func writeStringField(g Generator, name, value string) error {
	if err := g.WriteFieldName(name); err != nil {
		return err
	}
	return g.WriteString(value)
}

// writeRecordType writes an Avro record schema with the given fields.
func writeRecordType(g Generator, name string, fields, types []string) error {
	if err := g.WriteStartObject(); err != nil {
		return err
	}
	if err := writeStringField(g, "type", "record"); err != nil {
		return err
	}
	if err := writeStringField(g, "name", name); err != nil {
		return err
	}
	if err := g.WriteFieldName("fields"); err != nil {
		return err
	}
	if err := g.WriteStartArray(); err != nil {
		return err
	}
	for i, f := range fields {
		if err := g.WriteStartObject(); err != nil {
			return err
		}
		if err := writeStringField(g, "name", f); err != nil {
			return err
		}
		if err := writeStringField(g, "type", types[i]); err != nil {
			return err
		}
		if err := g.WriteEndObject(); err != nil {
			return err
		}
	}
	if err := g.WriteEndArray(); err != nil {
		return err
	}
	return g.WriteEndObject()
}

func writeInputType(g Generator, attrs []*tree.Attribute) error {
	fields := make([]string, len(attrs))
	types := make([]string, len(attrs))
	for i, a := range attrs {
		fields[i] = a.Name
		types[i] = "double"
		if a.Kind == tree.Nominal {
			types[i] = "string"
		}
	}
	return writeRecordType(g, "Input", fields, types)
}

func writeOutputType(g Generator, targets []string) error {
	if len(targets) == 1 {
		return g.WriteString("double")
	}

	types := make([]string, len(targets))
	for i := range types {
		types[i] = "double"
	}
	return writeRecordType(g, dependentVariables, targets, types)
}
