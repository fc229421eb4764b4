package tree

import (
	"math/rand"
	"sort"
)

func (t *Tree) build(X [][]float64, inx []int) {

	if t.MaxFeatures < 0 || t.MaxFeatures > t.nFeatures {
		t.MaxFeatures = t.nFeatures
	}

	if t.MinSplit < 0 {
		t.MinSplit = 2
	}

	if t.MinLeaf < 1 {
		t.MinLeaf = 1
	}

	t.Root = &Node{}

	s := new(buildStack)
	s.Push(&stackItem{t.Root, inx, []bool{}, 0})

	sp := newSplitter(X, t.v, t.Attributes, t.MaxFeatures, t.MinLeaf, t.randState)

	for !s.Empty() {
		w := s.Pop()
		n := w.node

		t.v.init(w.inx)
		currentImpurity := t.v.initialVal()

		n.Impurity = currentImpurity
		n.Samples = len(w.inx)
		n.Stat = t.statistic(t.v.nodeVal())

		if len(w.inx) < t.MinSplit || len(w.inx) < 2*t.MinLeaf ||
			(t.MaxDepth > 0 && w.depth == t.MaxDepth) || currentImpurity <= 1e-7 {
			n.Leaf = true
			continue
		}

		split := sp.bestSplit(w.inx, w.constantFeatures)
		if split.test == nil {
			// couldn't find a split
			n.Leaf = true
			continue
		}

		// partition w.inx, examples passing the test go first
		i := 0
		j := len(w.inx)

		for i < j {
			if split.test.Holds(X[w.inx[i]]) {
				i++
			} else {
				j--
				w.inx[j], w.inx[i] = w.inx[i], w.inx[j]
			}
		}

		n.Test = split.test
		n.Then = &Node{}
		n.Else = &Node{}

		s.Push(&stackItem{n.Then, w.inx[:i], split.constantFeatures, w.depth + 1})
		s.Push(&stackItem{n.Else, w.inx[i:], split.constantFeatures, w.depth + 1})
	}
}

type splitter struct {
	xBuf        []float64
	X           [][]float64
	attrs       []*Attribute
	maxFeatures int
	minLeaf     int
	features    []int
	catCt       []int
	v           *varValuer
	randState   *rand.Rand
}

type split struct {
	delta            float64
	test             Test
	constantFeatures []bool
}

func newSplitter(X [][]float64, v *varValuer, attrs []*Attribute, maxFeatures, minLeaf int, r *rand.Rand) *splitter {
	s := splitter{
		xBuf:        make([]float64, len(X)),
		X:           X,
		attrs:       attrs,
		maxFeatures: maxFeatures,
		minLeaf:     minLeaf,
		features:    make([]int, len(attrs)),
		v:           v,
		randState:   r,
	}

	for i := range s.features {
		s.features[i] = i
	}

	return &s
}

func (s *splitter) bestSplit(inx []int, constantFeatures []bool) split {

	var (
		deltaBest float64 // best impurity improvement
		testBest  Test
	)

	var (
		j                  = len(s.features) - 1
		visited, nConstant int
	)

	for j >= 0 && (visited < s.maxFeatures || visited <= nConstant) {
		k := s.randState.Intn(j + 1)
		currentFeature := s.features[k]
		s.features[k], s.features[j] = s.features[j], s.features[k]
		j--
		visited++

		if len(constantFeatures) > 0 && constantFeatures[currentFeature] {
			nConstant++
			continue
		}

		var (
			d        float64
			test     Test
			constant bool
		)

		attr := s.attrs[currentFeature]
		if attr.Kind == Nominal {
			d, test, constant = s.nominalSplit(attr, inx)
		} else {
			d, test, constant = s.numericSplit(attr, inx)
		}

		if constant {
			nConstant++
			c := make([]bool, len(s.features))
			copy(c, constantFeatures)
			c[currentFeature] = true
			constantFeatures = c
			continue
		}

		if test != nil && d > deltaBest {
			deltaBest = d
			testBest = test
		}
	}

	return split{deltaBest, testBest, constantFeatures}
}

// numericSplit looks for the best threshold on a numeric attribute. inx is
// left sorted by the attribute value.
func (s *splitter) numericSplit(attr *Attribute, inx []int) (float64, Test, bool) {
	// copy current feature to buffer
	for i, id := range inx {
		s.xBuf[i] = s.X[id][attr.Index]
	}
	xt := s.xBuf[:len(inx)]

	sort.Sort(byValue{xt, inx})

	if xt[len(xt)-1] <= xt[0]+1e-7 {
		return 0, nil, true
	}

	var (
		deltaBest float64
		valBest   float64
		found     bool
	)

	s.v.reset()
	for i := 1; i < len(xt); i++ {
		if xt[i] <= xt[i-1]+1e-7 {
			continue
		}

		s.v.update(i)

		if i < s.minLeaf || len(xt)-i < s.minLeaf {
			continue
		}

		if d := s.v.delta(); d > deltaBest {
			deltaBest = d
			valBest = (xt[i-1] + xt[i]) / 2.0
			found = true
		}
	}

	if !found {
		return 0, nil, false
	}
	return deltaBest, &NumericTest{Attribute: attr, Bound: valBest}, false
}

// nominalSplit tries every one-vs-rest split of a nominal attribute, in
// category order.
func (s *splitter) nominalSplit(attr *Attribute, inx []int) (float64, Test, bool) {
	if cap(s.catCt) < len(attr.Values) {
		s.catCt = make([]int, len(attr.Values))
	}
	ct := s.catCt[:len(attr.Values)]
	for i := range ct {
		ct[i] = 0
	}

	present := 0
	for _, id := range inx {
		c := int(s.X[id][attr.Index])
		if c < 0 || c >= len(ct) {
			continue
		}
		if ct[c] == 0 {
			present++
		}
		ct[c]++
	}

	if present < 2 {
		return 0, nil, true
	}

	var (
		deltaBest float64
		catBest   = -1
	)

	for c, n := range ct {
		if n < s.minLeaf || len(inx)-n < s.minLeaf {
			continue
		}

		// examples of category c go first
		i := 0
		for j := range inx {
			if int(s.X[inx[j]][attr.Index]) == c {
				inx[i], inx[j] = inx[j], inx[i]
				i++
			}
		}

		s.v.reset()
		s.v.update(i)

		if d := s.v.delta(); d > deltaBest {
			deltaBest = d
			catBest = c
		}
	}

	if catBest < 0 {
		return 0, nil, false
	}
	return deltaBest, &SubsetTest{
		Attribute: attr,
		Values:    []int{catBest},
		Text:      attr.Name + " = " + attr.Values[catBest],
	}, false
}

// byValue sorts feature values along with the example indices.
type byValue struct {
	x   []float64
	inx []int
}

func (b byValue) Len() int           { return len(b.x) }
func (b byValue) Less(i, j int) bool { return b.x[i] < b.x[j] }
func (b byValue) Swap(i, j int) {
	b.x[i], b.x[j] = b.x[j], b.x[i]
	b.inx[i], b.inx[j] = b.inx[j], b.inx[i]
}

type buildStack []*stackItem

func (s buildStack) Empty() bool        { return len(s) == 0 }
func (s *buildStack) Push(n *stackItem) { *s = append(*s, n) }
func (s *buildStack) Pop() *stackItem {
	d := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return d
}

type stackItem struct {
	node             *Node
	inx              []int
	constantFeatures []bool
	depth            int
}
