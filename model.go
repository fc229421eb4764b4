package main

import (
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/wlattner/pct/pfa"
	"github.com/wlattner/pct/tree"
)

type Model struct {
	Reg     *tree.Regressor
	fitTime time.Duration
	opt     modelOptions
	nSample int
	mse     []float64
}

func (m *Model) Fit(d *parsedInput, opt modelOptions) error {
	start := time.Now()

	options := []func(*tree.Tree){
		tree.MinSplit(opt.minSplit), tree.MinLeaf(opt.minLeaf),
		tree.MaxDepth(opt.maxDepth), tree.MaxFeatures(opt.maxFeatures),
		tree.Attributes(d.Attributes), tree.Targets(d.Targets),
	}
	if opt.seed != 0 {
		options = append(options, tree.RandState(opt.seed))
	}

	reg := tree.NewRegressor(options...)
	if err := reg.Fit(d.X, d.Y); err != nil {
		return err
	}

	m.Reg = reg
	m.fitTime = time.Since(start)
	m.nSample = len(d.X)
	m.opt = opt
	m.mse = meanSquaredError(d.Y, reg.Predict(d.X))
	return nil
}

func (m *Model) Predict(d *parsedInput) [][]float64 {
	return m.Reg.Predict(d.X)
}

// WritePFA writes the fitted tree as a PFA document, or only its action
// expression when actionOnly is set.
func (m *Model) WritePFA(g pfa.Generator, s *pfa.Serializer, name string, actionOnly bool) error {
	var err error
	if actionOnly {
		err = s.Serialize(m.Reg.Root, g)
	} else {
		err = s.WriteDocument(pfa.Document{
			Name:       name,
			Attributes: m.Reg.Attributes,
			Targets:    m.Reg.Targets,
			Root:       m.Reg.Root,
		}, g)
	}
	if err != nil {
		return err
	}
	return g.Flush()
}

func (m *Model) Report(w io.Writer) {
	// generic stuff
	fmt.Fprintf(w, "Fit tree with %d leaves (depth %d) using %d examples in %.2f seconds\n",
		countLeaves(m.Reg.Root), depth(m.Reg.Root), m.nSample, m.fitTime.Seconds())
	fmt.Fprintf(w, "\n")

	m.ReportVarImp(w, 20)

	fmt.Fprintf(w, "Training Mean Squared Error\n")
	fmt.Fprintf(w, "---------------------------\n")
	for i, name := range m.Reg.Targets {
		fmt.Fprintf(w, "%-15s: %.3f\n", name, m.mse[i])
	}
}

func (m *Model) VarImp() []float64 {
	return m.Reg.VarImp()
}

func (m *Model) varNames() []string {
	names := make([]string, len(m.Reg.Attributes))
	for i, a := range m.Reg.Attributes {
		names[i] = a.Name
	}
	return names
}

func (m *Model) SaveVarImp(w io.Writer) error {
	writer := csv.NewWriter(w)
	names := m.varNames()

	for i, score := range m.VarImp() {
		err := writer.Write([]string{names[i], strconv.FormatFloat(score, 'f', -1, 64)})
		if err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func (m *Model) ReportVarImp(w io.Writer, maxVars int) {
	fmt.Fprintf(w, "Variable Importance\n")
	fmt.Fprintf(w, "-------------------\n")

	varImp := m.VarImp()
	varNames := m.varNames()
	sortByImportance(varImp, varNames)

	// only show top n
	if maxVars > len(varImp) {
		maxVars = len(varImp)
	}

	for i, imp := range varImp[:maxVars] {
		fmt.Fprintf(w, "%-15s: %-10.2f\n", varNames[i], imp)
	}

	fmt.Fprintf(w, "\n")
}

func (m *Model) Load(r io.Reader) error {
	d := gob.NewDecoder(r)
	return d.Decode(m)
}

func (m *Model) Save(w io.Writer) error {
	e := gob.NewEncoder(w)
	return e.Encode(m)
}

func meanSquaredError(Y, pred [][]float64) []float64 {
	mse := make([]float64, len(Y[0]))
	for i := range Y {
		for k := range Y[i] {
			d := Y[i][k] - pred[i][k]
			mse[k] += d * d
		}
	}
	for k := range mse {
		mse[k] /= float64(len(Y))
	}
	return mse
}

func countLeaves(n *tree.Node) int {
	if n.Leaf {
		return 1
	}
	return countLeaves(n.Then) + countLeaves(n.Else)
}

func depth(n *tree.Node) int {
	if n.Leaf {
		return 0
	}
	l, r := depth(n.Then), depth(n.Else)
	if l > r {
		return l + 1
	}
	return r + 1
}

type varImpSort struct {
	varName []string
	imp     []float64
}

func (v varImpSort) Len() int {
	return len(v.imp)
}

func (v varImpSort) Less(i, j int) bool {
	return v.imp[i] < v.imp[j]
}

func (v varImpSort) Swap(i, j int) {
	v.imp[i], v.imp[j] = v.imp[j], v.imp[i]
	v.varName[i], v.varName[j] = v.varName[j], v.varName[i]
}

func sortByImportance(imp []float64, names []string) {
	sort.Sort(sort.Reverse(varImpSort{imp: imp, varName: names}))
}
