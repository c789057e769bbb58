// Package graphfile reads and writes graphs as YAML, JSON or CUE documents.
//
// A document has two lists of attribute maps:
//
//	vertices:
//	  - {id: 0, name: a}
//	edges:
//	  - {src: 0, dst: 1, weight: 3}
//
// Vertex columns are "id" followed by every other attribute in lexical
// order; edge columns are "src", "dst", then the rest. An attribute missing
// from a row is null.
package graphfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/motif/internal/graph"
	"github.com/roach88/motif/internal/ir"
)

// Error codes, shared with the CLI.
const (
	ErrCodeNoFiles      = "E003" // directory without CUE files
	ErrCodeLoadFailed   = "E004" // file unreadable or malformed
	ErrCodeNotFound     = "E005" // path not found
	ErrCodeBuildFailed  = "E006" // CUE evaluation failed
	ErrCodeWriteFailed  = "E007" // file write error
	ErrCodeInvalidGraph = "E008" // document is not a valid graph
	ErrCodeUnsupported  = "E009" // unknown file extension
)

// LoadError reports a graph file that could not be loaded.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
}

// Document is the decoded form of a graph file.
type Document struct {
	Vertices []map[string]any `yaml:"vertices" json:"vertices"`
	Edges    []map[string]any `yaml:"edges" json:"edges"`
}

// Graph converts the document to a validated Graph.
func (d *Document) Graph() (*graph.Graph, error) {
	vertices, err := relation("vertices", []string{graph.ColumnID}, d.Vertices)
	if err != nil {
		return nil, err
	}
	edges, err := relation("edges", []string{graph.ColumnSrc, graph.ColumnDst}, d.Edges)
	if err != nil {
		return nil, err
	}
	return graph.New(vertices, edges)
}

func relation(name string, leading []string, rows []map[string]any) (*graph.Relation, error) {
	objects := make([]ir.IRObject, len(rows))
	for i, row := range rows {
		v, err := ir.FromGo(row)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		obj, ok := v.(ir.IRObject)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: not an object", name, i)
		}
		objects[i] = obj
	}
	return graph.RelationFromObjects(leading, objects)
}

// Load reads a graph from a .yaml, .yml, .json or .cue file, or from a
// directory holding one CUE package.
func Load(path string) (*graph.Graph, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "graph file not found"}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: fmt.Sprintf("error accessing graph file: %v", err)}
	}
	if info.IsDir() {
		return loadCUEDir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Path: path, Message: err.Error()}
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return DecodeYAML(path, data)
	case ".json":
		return DecodeJSON(path, data)
	case ".cue":
		return DecodeCUE(path, data)
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, Path: path, Message: fmt.Sprintf("unsupported graph file extension %q", filepath.Ext(path))}
	}
}

// DecodeYAML decodes a YAML document. Unknown top-level keys are rejected.
func DecodeYAML(path string, data []byte) (*graph.Graph, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && err != io.EOF {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Path: path, Message: fmt.Sprintf("parsing YAML: %v", err)}
	}
	return build(path, &doc)
}

// DecodeJSON decodes a JSON document. Unknown top-level keys are rejected
// and numbers must be integers.
func DecodeJSON(path string, data []byte) (*graph.Graph, error) {
	var doc Document
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Path: path, Message: fmt.Sprintf("parsing JSON: %v", err)}
	}
	return build(path, &doc)
}

// DecodeCUE evaluates a single CUE file. The value must be concrete.
func DecodeCUE(path string, data []byte) (*graph.Graph, error) {
	value := cuecontext.New().CompileBytes(data, cue.Filename(path))
	return fromCUE(path, value)
}

func loadCUEDir(dir string) (*graph.Graph, error) {
	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Path: dir, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Path: dir, Message: "no CUE files found"}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Path: dir, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, cueLoadError(dir, ErrCodeLoadFailed, "loading CUE files", inst.Err)
	}
	return fromCUE(dir, cuecontext.New().BuildInstance(inst))
}

func fromCUE(path string, value cue.Value) (*graph.Graph, error) {
	if err := value.Err(); err != nil {
		return nil, cueLoadError(path, ErrCodeBuildFailed, "building CUE value", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(path, ErrCodeBuildFailed, "CUE value is not concrete", err)
	}
	data, err := value.MarshalJSON()
	if err != nil {
		return nil, cueLoadError(path, ErrCodeBuildFailed, "exporting CUE value", err)
	}
	return DecodeJSON(path, data)
}

func cueLoadError(path, code, msg string, err error) *LoadError {
	le := &LoadError{Code: code, Path: path, Message: fmt.Sprintf("%s: %v", msg, err)}
	if pos := cueerrors.Positions(err); len(pos) > 0 {
		le.Pos = pos[0]
	}
	return le
}

func build(path string, doc *Document) (*graph.Graph, error) {
	g, err := doc.Graph()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidGraph, Path: path, Message: err.Error()}
	}
	return g, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// Encode writes g as an indented JSON document that Load reads back.
// Attribute maps are canonical JSON, so equal graphs encode identically.
func Encode(w io.Writer, g *graph.Graph) error {
	doc := ir.IRObject{
		"vertices": objects(g.Vertices()),
		"edges":    objects(g.Edges()),
	}
	data, err := ir.MarshalCanonical(doc)
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}

// WriteFile encodes g to path.
func WriteFile(path string, g *graph.Graph) error {
	var buf bytes.Buffer
	if err := Encode(&buf, g); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return &LoadError{Code: ErrCodeWriteFailed, Path: path, Message: err.Error()}
	}
	return nil
}

func objects(r *graph.Relation) ir.IRArray {
	out := make(ir.IRArray, r.Len())
	for i := range out {
		out[i] = r.Object(i)
	}
	return out
}
