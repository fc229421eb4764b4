package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanRun(t *testing.T) {
	dir := t.TempDir()
	saved := filepath.Join(dir, "pct.model")
	if err := os.WriteFile(saved, []byte("model"), 0644); err != nil {
		t.Fatal("unexpected error writing model file:", err)
	}

	cases := []struct {
		data, model string
		want        bool
	}{
		{"train.csv", "", true},
		{"train.csv", filepath.Join(dir, "missing.model"), true},
		{"", saved, true},
		{"", filepath.Join(dir, "missing.model"), false},
		{"", "", false},
	}

	for _, c := range cases {
		if got := canRun(c.data, c.model); got != c.want {
			t.Errorf("canRun(%q, %q): expected %v, got %v", c.data, c.model, c.want, got)
		}
	}
}
