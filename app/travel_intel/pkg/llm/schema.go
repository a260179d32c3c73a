package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema 生成结果需要满足的 JSON Schema
type Schema struct {
	Name     string
	Raw      string
	compiled *jsonschema.Schema
}

// CompileSchema 编译 JSON Schema 文本
func CompileSchema(name, raw string) (*Schema, error) {
	url := "mem://schemas/" + name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, strings.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{Name: name, Raw: raw, compiled: compiled}, nil
}

// MustCompileSchema 编译失败时 panic，用于包级变量
func MustCompileSchema(name, raw string) *Schema {
	s, err := CompileSchema(name, raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate 校验 JSON 文本
func (s *Schema) Validate(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if err := s.compiled.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return nil
}
