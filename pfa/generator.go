package pfa

import (
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Generator is a streaming document writer. Values written inside an object
// must each be preceded by WriteFieldName.
type Generator interface {
	WriteStartObject() error
	WriteEndObject() error
	WriteStartArray() error
	WriteEndArray() error
	WriteFieldName(name string) error
	WriteString(s string) error
	WriteNumber(f float64) error
	Flush() error
}

// ErrNonFinite is returned when a NaN or infinite number is written; JSON
// has no representation for them.
var ErrNonFinite = errors.New("pfa: non-finite number")

var (
	errNoField   = errors.New("pfa: object member written without a field name")
	errMisplaced = errors.New("pfa: unbalanced or misplaced document token")
	errComplete  = errors.New("pfa: document already complete")
)

// buffered output is handed to the writer once it grows past flushSize
const flushSize = 4096

type frame struct {
	array bool
	count int
}

// JSONGenerator writes a JSON document to an io.Writer through a
// json-iterator Stream. It is not safe for concurrent use.
type JSONGenerator struct {
	stream *jsoniter.Stream
	stack  []frame
	field  bool // a field name is waiting for its value
	done   bool
}

// GeneratorOption configures a JSONGenerator.
type GeneratorOption func(*jsoniter.Config)

// Indent pretty prints the document with n spaces per level.
func Indent(n int) GeneratorOption {
	return func(c *jsoniter.Config) {
		c.IndentionStep = n
	}
}

// NewJSONGenerator returns a Generator writing compact JSON to w.
func NewJSONGenerator(w io.Writer, options ...GeneratorOption) *JSONGenerator {
	cfg := jsoniter.Config{}
	for _, opt := range options {
		opt(&cfg)
	}
	return &JSONGenerator{stream: jsoniter.NewStream(cfg.Froze(), w, flushSize)}
}

// beforeValue places the separator in front of a value and checks that a
// value is allowed here.
func (g *JSONGenerator) beforeValue() error {
	if g.stream.Error != nil {
		return g.stream.Error
	}
	if len(g.stack) == 0 {
		if g.done {
			return errComplete
		}
		return nil
	}

	top := &g.stack[len(g.stack)-1]
	if top.array {
		if top.count > 0 {
			g.stream.WriteMore()
		}
		top.count++
		return nil
	}
	if !g.field {
		return errNoField
	}
	g.field = false
	return nil
}

// afterValue marks the document complete when a root value ends and flushes
// once enough output is buffered.
func (g *JSONGenerator) afterValue() error {
	if len(g.stack) == 0 {
		g.done = true
	}
	if g.stream.Buffered() >= flushSize {
		return g.stream.Flush()
	}
	return nil
}

func (g *JSONGenerator) WriteStartObject() error {
	if err := g.beforeValue(); err != nil {
		return err
	}
	g.stream.WriteObjectStart()
	g.stack = append(g.stack, frame{})
	return nil
}

func (g *JSONGenerator) WriteEndObject() error {
	if g.stream.Error != nil {
		return g.stream.Error
	}
	if len(g.stack) == 0 || g.stack[len(g.stack)-1].array || g.field {
		return errMisplaced
	}
	g.stack = g.stack[:len(g.stack)-1]
	g.stream.WriteObjectEnd()
	return g.afterValue()
}

func (g *JSONGenerator) WriteStartArray() error {
	if err := g.beforeValue(); err != nil {
		return err
	}
	g.stream.WriteArrayStart()
	g.stack = append(g.stack, frame{array: true})
	return nil
}

func (g *JSONGenerator) WriteEndArray() error {
	if g.stream.Error != nil {
		return g.stream.Error
	}
	if len(g.stack) == 0 || !g.stack[len(g.stack)-1].array {
		return errMisplaced
	}
	g.stack = g.stack[:len(g.stack)-1]
	g.stream.WriteArrayEnd()
	return g.afterValue()
}

func (g *JSONGenerator) WriteFieldName(name string) error {
	if g.stream.Error != nil {
		return g.stream.Error
	}
	if len(g.stack) == 0 || g.stack[len(g.stack)-1].array || g.field {
		return errMisplaced
	}
	top := &g.stack[len(g.stack)-1]
	if top.count > 0 {
		g.stream.WriteMore()
	}
	top.count++
	g.stream.WriteObjectField(validUTF8(name))
	g.field = true
	return nil
}

func (g *JSONGenerator) WriteString(s string) error {
	if err := g.beforeValue(); err != nil {
		return err
	}
	g.stream.WriteString(validUTF8(s))
	return g.afterValue()
}

func (g *JSONGenerator) WriteNumber(f float64) error {
	s, err := formatNumber(f)
	if err != nil {
		return err
	}
	if err := g.beforeValue(); err != nil {
		return err
	}
	g.stream.WriteRaw(s)
	return g.afterValue()
}

// Flush writes any buffered output to the underlying writer.
func (g *JSONGenerator) Flush() error {
	return g.stream.Flush()
}

// validUTF8 replaces invalid UTF-8 sequences, which the stream would
// otherwise copy into the document unchanged.
func validUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// formatNumber renders f in its shortest round-trip form. Integral values
// keep a fractional part so that they read back as doubles.
func formatNumber(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", ErrNonFinite
	}

	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'e', -1, 64), nil
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}
