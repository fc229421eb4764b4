package main

import (
	"strings"
	"testing"

	"github.com/wlattner/pct/tree"
)

func TestParseBostonRegression(t *testing.T) {
	r := strings.NewReader(bostonCSV)

	p, err := parseCSV(r, 1, nil)
	if err != nil {
		t.Error("unexpected error parsing boston data:", err)
		return
	}

	if len(p.Targets) != 1 || p.Targets[0] != "medv" {
		t.Error("expected the single target to be medv, got:", p.Targets)
	}

	if p.Attributes[0].Name != "crim" {
		t.Error("expected first variable name to be crim, got:", p.Attributes[0].Name)
	}

	for _, a := range p.Attributes {
		if a.Kind != tree.Numeric {
			t.Error("expected every boston variable to be numeric, got nominal:", a.Name)
		}
	}

	// check number of rows
	if len(p.X) != 9 {
		t.Error("expected dataset to have 9 rows, got:", len(p.X))
	}

	// num cols
	if len(p.X[0]) != 13 {
		t.Error("expected dataset to have 13 columns, got:", len(p.X[0]))
	}

	// spot check some y vals
	if p.Y[3][0] != 33.4 {
		t.Error("expected 4th row to have target value of 33.4, got:", p.Y[3][0])
	}
}

func TestParseIrisMultiTarget(t *testing.T) {
	r := strings.NewReader(irisCSV)

	p, err := parseCSV(r, 2, nil)
	if err != nil {
		t.Error("unexpected error parsing iris data:", err)
		return
	}

	if len(p.Targets) != 2 || p.Targets[0] != "Sepal_Length" || p.Targets[1] != "Sepal_Width" {
		t.Error("expected targets Sepal_Length and Sepal_Width, got:", p.Targets)
	}

	//check num rows
	if len(p.X) != 9 {
		t.Error("expected dataset to have 9 rows, got:", len(p.X))
	}

	// num cols
	if len(p.X[0]) != 3 {
		t.Error("expected dataset to have 3 columns, got:", len(p.X[0]))
	}

	species := p.Attributes[0]
	if species.Name != "Species" || species.Kind != tree.Nominal {
		t.Error("expected first variable to be the nominal Species, got:", species.Name)
	}
	if len(species.Values) != 2 || species.Values[0] != "setosa" || species.Values[1] != "virginica" {
		t.Error("expected categories setosa and virginica, got:", species.Values)
	}

	// spot check encoded category
	if p.X[4][0] != 1 {
		t.Error("expected 5th row to have category 1 (virginica), got:", p.X[4][0])
	}

	if p.Y[1][1] != 3 {
		t.Error("expected 2nd row to have Sepal.Width of 3, got:", p.Y[1][1])
	}
}

func TestParseNoHeader(t *testing.T) {
	r := strings.NewReader("1,2,a\n3,4,b\n")

	p, err := parseCSV(r, 1, nil)
	if err != nil {
		t.Error("unexpected error parsing data:", err)
		return
	}

	if len(p.X) != 2 {
		t.Error("expected the first row to be data, got rows:", len(p.X))
	}
	if p.Targets[0] != "Y1" {
		t.Error("expected default target name Y1, got:", p.Targets[0])
	}
	if p.Attributes[0].Name != "X1" || p.Attributes[1].Name != "X2" {
		t.Error("expected default variable names X1 and X2, got:", p.Attributes[0].Name, p.Attributes[1].Name)
	}
	if p.Attributes[1].Kind != tree.Nominal {
		t.Error("expected X2 to be nominal")
	}
}

func TestParseWithModelAttributes(t *testing.T) {
	attrs := []*tree.Attribute{
		{Name: "size", Index: 0},
		{Name: "color", Index: 1, Kind: tree.Nominal, Values: []string{"red", "green"}},
	}
	r := strings.NewReader("y,size,color\n1,2.5,green\n2,3,purple\n")

	p, err := parseCSV(r, 1, attrs)
	if err != nil {
		t.Error("unexpected error parsing data:", err)
		return
	}

	if p.X[0][0] != 2.5 || p.X[0][1] != 1 {
		t.Error("expected first row [2.5 1], got:", p.X[0])
	}
	if p.X[1][1] != -1 {
		t.Error("expected unknown category to be encoded as -1, got:", p.X[1][1])
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name     string
		data     string
		nTargets int
		attrs    []*tree.Attribute
	}{
		{"no targets", "1,2\n", 0, nil},
		{"no feature columns", "1,2\n", 2, nil},
		{"header only", "y,x\n", 1, nil},
		{"bad target", "y,x\n1,2\nfoo,3\n", 1, nil},
		{"attribute count", "y,x\n1,2\n", 1, []*tree.Attribute{{Name: "a"}, {Name: "b", Index: 1}}},
		{"bad numeric value", "y,x\n1,2\n2,foo\n", 1, []*tree.Attribute{{Name: "x"}}},
		{"invalid utf-8", "y,x\n1,caf\xe9\n", 1, nil},
		{"duplicate field names", "y,a.b,a_b\n1,2,3\n", 1, nil},
	}

	for _, c := range cases {
		if _, err := parseCSV(strings.NewReader(c.data), c.nTargets, c.attrs); err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}

func TestParseFieldNames(t *testing.T) {
	r := strings.NewReader("y.1,Petal Width,2nd,café\n1,2,3,4\n")

	p, err := parseCSV(r, 1, nil)
	if err != nil {
		t.Error("unexpected error parsing data:", err)
		return
	}

	if p.Targets[0] != "y_1" {
		t.Error("expected target name y_1, got:", p.Targets[0])
	}

	want := []string{"Petal_Width", "_2nd", "caf__"}
	for i, name := range want {
		if p.Attributes[i].Name != name {
			t.Errorf("expected variable %d to be named %s, got: %s", i, name, p.Attributes[i].Name)
		}
	}
}

var bostonCSV = `"medv","crim","zn","indus","chas","nox","rm","age","dis","rad","tax","ptratio","black","lstat"
24,0.00632,18,2.31,0,0.538,6.575,65.2,4.09,1,296,15.3,396.9,4.98
21.6,0.02731,0,7.07,0,0.469,6.421,78.9,4.9671,2,242,17.8,396.9,9.14
34.7,0.02729,0,7.07,0,0.469,7.185,61.1,4.9671,2,242,17.8,392.83,4.03
33.4,0.03237,0,2.18,0,0.458,6.998,45.8,6.0622,3,222,18.7,394.63,2.94
36.2,0.06905,0,2.18,0,0.458,7.147,54.2,6.0622,3,222,18.7,396.9,5.33
28.7,0.02985,0,2.18,0,0.458,6.43,58.7,6.0622,3,222,18.7,394.12,5.21
22.9,0.08829,12.5,7.87,0,0.524,6.012,66.6,5.5605,5,311,15.2,395.6,12.43
27.1,0.14455,12.5,7.87,0,0.524,6.172,96.1,5.9505,5,311,15.2,396.9,19.15
16.5,0.21124,12.5,7.87,0,0.524,5.631,100,6.0821,5,311,15.2,386.63,29.93
`

var irisCSV = `"Sepal.Length","Sepal.Width","Species","Petal.Length","Petal.Width"
5.1,3.5,"setosa",1.4,0.2
4.9,3,"setosa",1.4,0.2
4.7,3.2,"setosa",1.3,0.2
4.6,3.1,"setosa",1.5,0.2
5,3.6,"virginica",1.4,0.2
5.4,3.9,"setosa",1.7,0.4
4.6,3.4,"setosa",1.4,0.3
5,3.4,"setosa",1.5,0.2
4.4,2.9,"setosa",1.4,0.2
`
