package pfa

import "fmt"

// MalformedModelError reports a tree that cannot be expressed as a PFA
// document. Path locates the offending node by the branches taken from the
// root, e.g. "root.then.else".
type MalformedModelError struct {
	Path   string
	Reason string
}

func (e *MalformedModelError) Error() string {
	return fmt.Sprintf("pfa: malformed model at %s: %s", e.Path, e.Reason)
}

func malformed(path, format string, a ...interface{}) error {
	return &MalformedModelError{Path: path, Reason: fmt.Sprintf(format, a...)}
}
