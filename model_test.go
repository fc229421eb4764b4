package main

import (
	"bytes"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"

	"github.com/wlattner/pct/pfa"
)

func fitModel(t *testing.T, data string) *Model {
	d, err := parseCSV(strings.NewReader(data), 1, nil)
	if err != nil {
		t.Fatal("unexpected error parsing data:", err)
	}

	m := new(Model)
	err = m.Fit(d, modelOptions{minSplit: 2, minLeaf: 1, maxDepth: -1, maxFeatures: -1, seed: 1})
	if err != nil {
		t.Fatal("unexpected error fitting model:", err)
	}
	return m
}

func writeAction(t *testing.T, m *Model) string {
	var buf bytes.Buffer
	err := m.WritePFA(pfa.NewJSONGenerator(&buf), pfa.NewSerializer(), "", true)
	if err != nil {
		t.Fatal("unexpected error writing PFA:", err)
	}
	return buf.String()
}

func TestWriteNumericAction(t *testing.T) {
	m := fitModel(t, "y,x\n1,1\n1,2\n5,10\n5,11\n")

	want := `{"if":{">":["input.x",6.0]},"then":5.0,"else":1.0}`
	if got := writeAction(t, m); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestWriteNominalAction(t *testing.T) {
	m := fitModel(t, "y,color\n1,red\n1,red\n5,blue\n5,blue\n")

	want := `{"if":{"==":["input.color","red"]},"then":1.0,"else":5.0}`
	if got := writeAction(t, m); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestWriteDocument(t *testing.T) {
	m := fitModel(t, bostonCSV)

	var buf bytes.Buffer
	err := m.WritePFA(pfa.NewJSONGenerator(&buf, pfa.Indent(2)), pfa.NewSerializer(), "boston", false)
	if err != nil {
		t.Fatal("unexpected error writing PFA:", err)
	}

	if !jsoniter.Valid(buf.Bytes()) {
		t.Error("expected a valid JSON document, got:", buf.String())
	}

	var doc struct {
		Name   string
		Output string
		Input  struct {
			Fields []struct{ Name, Type string }
		}
	}
	if err := jsoniter.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal("unexpected error reading document:", err)
	}
	if doc.Name != "boston" || doc.Output != "double" {
		t.Error("expected engine boston with double output, got:", doc.Name, doc.Output)
	}
	if len(doc.Input.Fields) != 13 || doc.Input.Fields[0].Name != "crim" {
		t.Error("expected 13 input fields starting with crim, got:", doc.Input.Fields)
	}
}

func TestModelSaveLoad(t *testing.T) {
	m := fitModel(t, "y,x,color\n1,1,red\n2,2,green\n1,3,red\n5,10,blue\n4,11,green\n5,12,blue\n")

	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		t.Fatal("unexpected error saving model:", err)
	}

	m2 := new(Model)
	if err := m2.Load(&buf); err != nil {
		t.Fatal("unexpected error loading model:", err)
	}

	if want, got := writeAction(t, m), writeAction(t, m2); want != got {
		t.Errorf("expected loaded model to write %s, got %s", want, got)
	}
}

func TestReport(t *testing.T) {
	m := fitModel(t, bostonCSV)

	var buf bytes.Buffer
	m.Report(&buf)

	for _, s := range []string{"Variable Importance", "Training Mean Squared Error", "medv"} {
		if !strings.Contains(buf.String(), s) {
			t.Errorf("expected report to contain %q, got:\n%s", s, buf.String())
		}
	}
}

func TestWritePred(t *testing.T) {
	var buf bytes.Buffer
	err := writePred(&buf, []string{"a", "b"}, [][]float64{{1, 2.5}, {-3, 0}})
	if err != nil {
		t.Fatal("unexpected error writing predictions:", err)
	}

	want := "a,b\n1,2.5\n-3,0\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}
