package project

import (
	"bytes"
	"errors"
	"io"
	"os"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSnapshot is returned when a reactor snapshot cannot be decoded.
var ErrInvalidSnapshot = zerr.New("invalid reactor snapshot")

type document struct {
	Projects []*Project `yaml:"projects"`
}

// Load decodes a YAML reactor snapshot.
func Load(r io.Reader) (*Graph, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return NewGraph()
		}
		return nil, zerr.With(zerr.Wrap(ErrInvalidSnapshot, "decode reactor snapshot"), "cause", err.Error())
	}
	return NewGraph(doc.Projects...)
}

// LoadFile reads a YAML reactor snapshot from path.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "read reactor snapshot"), "path", path)
	}
	g, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return g, nil
}

// Write encodes the graph as a YAML reactor snapshot.
func (g *Graph) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{Projects: g.projects}); err != nil {
		return zerr.Wrap(err, "encode reactor snapshot")
	}
	return enc.Close()
}

// WriteFile writes the graph to path with restrictive permissions.
func (g *Graph) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := g.Write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return zerr.With(zerr.Wrap(err, "write reactor snapshot"), "path", path)
	}
	return nil
}
