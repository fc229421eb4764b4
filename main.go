package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	flag "github.com/docker/docker/pkg/mflag"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"

	"github.com/wlattner/pct/pfa"
	"github.com/wlattner/pct/tree"
)

var (
	// model/prediction files
	dataFile    = flag.String([]string{"d", "-data"}, "", "example data, fits a new tree when given without --predictions")
	predictFile = flag.String([]string{"p", "-predictions"}, "", "file to output predictions")
	modelFile   = flag.String([]string{"f", "-final_model"}, "pct.model", "file to output fitted model, or to read it from")
	pfaFile     = flag.String([]string{"o", "-pfa"}, "", "file to output the PFA document, stdout when empty")
	impFile     = flag.String([]string{"-var_importance"}, "", "file to output variable importance estimates")
	// model params
	nTargets    = flag.Int([]string{"t", "-targets"}, 1, "number of leading columns holding target values")
	minSplit    = flag.Int([]string{"-min_split"}, 2, "minimum number of samples required to split an internal node")
	minLeaf     = flag.Int([]string{"-min_leaf"}, 1, "minimum number of samples in newly created leaves")
	maxDepth    = flag.Int([]string{"-max_depth"}, -1, "maximum depth of the tree, -1 grows a full tree")
	maxFeatures = flag.Int([]string{"-max_features"}, -1, "number of features to consider when looking for the best split, -1 considers all")
	seed        = flag.Int([]string{"-seed"}, 0, "seed for feature sampling, 0 seeds from the clock")
	// document params
	docName     = flag.String([]string{"n", "-name"}, "pct", "name of the PFA engine")
	actionOnly  = flag.Bool([]string{"-action_only"}, false, "write only the tree expression, without the document envelope")
	multiSubset = flag.Bool([]string{"-multi_subset"}, false, "encode subset tests with several values as a.contains")
	indent      = flag.Int([]string{"-indent"}, 0, "indent the PFA document by n spaces per level")
	// runtime params
	verbose    = flag.Bool([]string{"v", "-verbose"}, false, "debug logging")
	runProfile = flag.Bool([]string{"-profile"}, false, "cpu profile")
)

var log = logrus.New()

type modelOptions struct {
	minSplit    int
	minLeaf     int
	maxDepth    int
	maxFeatures int
	seed        int64
}

func parseModelOpts() (modelOptions, error) {
	o := modelOptions{
		minSplit:    *minSplit,
		minLeaf:     *minLeaf,
		maxDepth:    *maxDepth,
		maxFeatures: *maxFeatures,
		seed:        int64(*seed),
	}

	return o, nil
}

func main() {
	flag.Parse()

	log.Out = os.Stderr
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if *runProfile {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	if !canRun(*dataFile, *modelFile) {
		os.Stderr.WriteString("Usage of pct:\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var m *Model

	switch {
	case *dataFile != "" && *predictFile != "":
		var err error
		m, err = loadModel(*modelFile)
		if err != nil {
			fatal("error opening model file", err.Error())
		}

		d := readData(*dataFile, len(m.Reg.Targets), m.Reg.Attributes)
		pred := m.Predict(d)

		// write the predictions to file
		o, err := os.Create(*predictFile)
		if err != nil {
			fatal("error creating", *predictFile, err.Error())
		}
		defer o.Close()

		err = writePred(o, m.Reg.Targets, pred)
		if err != nil {
			fatal("error writing predictions", err.Error())
		}
		log.WithField("examples", len(pred)).Info("wrote predictions to ", *predictFile)
		return

	case *dataFile != "":
		opt, err := parseModelOpts()
		if err != nil {
			fatal("invalid model option", err.Error())
		}

		d := readData(*dataFile, *nTargets, nil)

		// fit model
		m = new(Model)
		if err := m.Fit(d, opt); err != nil {
			fatal("error fitting model", err.Error())
		}

		// save model to disk
		if *modelFile != "" {
			o, err := os.Create(*modelFile)
			if err != nil {
				fatal("error saving model", err.Error())
			}
			defer o.Close()

			err = m.Save(o)
			if err != nil {
				fatal("error saving model", err.Error())
			}
			log.WithField("file", *modelFile).Debug("saved model")
		}

		// write var importance to file
		if *impFile != "" {
			f, err := os.Create(*impFile)
			if err != nil {
				fatal("error saving variable importance", err.Error())
			}
			defer f.Close()
			err = m.SaveVarImp(f)
			if err != nil {
				fatal("error saving variable importance", err.Error())
			}
		}

		m.Report(os.Stderr)

	default:
		var err error
		m, err = loadModel(*modelFile)
		if err != nil {
			fatal("error opening model file", err.Error())
		}
	}

	var out io.Writer = os.Stdout
	if *pfaFile != "" {
		f, err := os.Create(*pfaFile)
		if err != nil {
			fatal("error creating", *pfaFile, err.Error())
		}
		defer f.Close()
		out = f
	}

	options := []func(*pfa.Serializer){pfa.Logger(log)}
	if *multiSubset {
		options = append(options, pfa.MultiValueSubsets())
	}
	s := pfa.NewSerializer(options...)

	var genOpts []pfa.GeneratorOption
	if *indent > 0 {
		genOpts = append(genOpts, pfa.Indent(*indent))
	}

	err := m.WritePFA(pfa.NewJSONGenerator(out, genOpts...), s, *docName, *actionOnly)
	if err != nil {
		fatal("error writing PFA document", err.Error())
	}
	if *pfaFile == "" {
		os.Stdout.WriteString("\n")
	}
}

// canRun reports whether there is data to fit or predict, or else a saved
// model to export.
func canRun(dataFile, modelFile string) bool {
	if dataFile != "" {
		return true
	}
	if modelFile == "" {
		return false
	}
	_, err := os.Stat(modelFile)
	return err == nil
}

func readData(fName string, nTargets int, attrs []*tree.Attribute) *parsedInput {
	f, err := os.Open(fName)
	if err != nil {
		fatal("error opening data file", err.Error())
	}
	defer f.Close()

	d, err := parseCSV(f, nTargets, attrs)
	if err != nil {
		fatal("error parsing input data", err.Error())
	}
	log.WithFields(logrus.Fields{
		"examples": len(d.X),
		"features": len(d.Attributes),
		"targets":  len(d.Targets),
	}).Debug("parsed ", fName)
	return d
}

func loadModel(fName string) (*Model, error) {
	f, err := os.Open(fName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := new(Model)
	err = m.Load(f)
	return m, err
}

func fatal(a ...interface{}) {
	log.Fatalln(a...)
}

func writePred(w io.Writer, targets []string, prediction [][]float64) error {
	wtr := csv.NewWriter(w)

	if err := wtr.Write(targets); err != nil {
		return err
	}

	row := make([]string, len(targets))
	for _, pred := range prediction {
		for i, v := range pred {
			row[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}

		if err := wtr.Write(row); err != nil {
			return err
		}
	}

	wtr.Flush()
	return wtr.Error()
}
