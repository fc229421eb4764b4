package pfa

import "github.com/wlattner/pct/tree"

// Validate checks that the tree rooted at root can be serialized: every
// internal node has a resolvable test and two children, every leaf a
// non-empty statistic with unique target names, and no node is reachable
// twice. It returns a *MalformedModelError describing the first problem
// found in depth-first, then-before-else order.
func (s *Serializer) Validate(root *tree.Node) error {
	if root == nil {
		return malformed("root", "nil tree")
	}
	return s.validate(root, "root", make(map[*tree.Node]bool))
}

func (s *Serializer) validate(n *tree.Node, path string, seen map[*tree.Node]bool) error {
	if seen[n] {
		return malformed(path, "node is reachable more than once")
	}
	seen[n] = true

	if n.Leaf {
		return validateStat(n.Stat, path)
	}

	if _, err := s.condition(n.Test, path); err != nil {
		return err
	}

	for i, branch := range [...]string{"then", "else"} {
		c := n.Child(i)
		if c == nil {
			return malformed(path, "internal node without %s child", branch)
		}
		if err := s.validate(c, path+"."+branch, seen); err != nil {
			return err
		}
	}
	return nil
}

func validateStat(stat tree.Statistic, path string) error {
	if len(stat) == 0 {
		return malformed(path, "leaf without prediction")
	}

	names := make(map[string]bool, len(stat))
	for _, t := range stat {
		if !finite(t.Mean) {
			return malformed(path, "non-finite mean for target %q", t.Name)
		}
		if names[t.Name] {
			return malformed(path, "duplicate target %q", t.Name)
		}
		names[t.Name] = true
	}
	return nil
}
