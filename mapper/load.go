package mapper

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a mapper file.
//
//	namespace: orders
//	statements:
//	  - id: list
//	    description: Orders of a customer, newest first.
//	    sql: |
//	      SELECT id, status FROM orders
//	      WHERE customer_id = #{customer}
//	      ORDER BY created_at DESC
type File struct {
	Namespace  string          `yaml:"namespace,omitempty"`
	Statements []StatementSpec `yaml:"statements"`
}

// StatementSpec is one statement entry of a mapper file.
type StatementSpec struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description,omitempty"`
	SQL         string `yaml:"sql"`
}

// Decode parses a mapper file. Statement ids are prefixed with the
// namespace, if any.
func Decode(r io.Reader) ([]*Statement, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("pager/mapper: decode: %w", err)
	}
	stmts := make([]*Statement, 0, len(f.Statements))
	for _, spec := range f.Statements {
		if spec.ID == "" {
			return nil, fmt.Errorf("pager/mapper: statement without id in namespace %q", f.Namespace)
		}
		id := spec.ID
		if f.Namespace != "" {
			id = f.Namespace + "." + id
		}
		s, err := NewStatement(id, spec.SQL)
		if err != nil {
			return nil, err
		}
		s.Description = spec.Description
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// LoadFiles reads and decodes the given mapper files.
func LoadFiles(paths ...string) ([]*Statement, error) {
	var all []*Statement
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("pager/mapper: %w", err)
		}
		stmts, err := Decode(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		all = append(all, stmts...)
	}
	return all, nil
}

// Load reads the given mapper files into r, replacing its content.
func (r *Registry) Load(paths ...string) error {
	stmts, err := LoadFiles(paths...)
	if err != nil {
		return err
	}
	return r.Replace(stmts)
}
