package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/renatobalun/langchain-error/pkg/models"
)

// shape is a JSON Schema derived from a Go type, used both to instruct the
// model and to check what it sends back.
type shape[T any] struct {
	name     string
	raw      json.RawMessage
	resolved *jsonschema.Resolved
}

func newShape[T any](name string, refine func(*jsonschema.Schema)) (*shape[T], error) {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, fmt.Errorf("infer %s schema: %w", name, err)
	}
	if refine != nil {
		refine(schema)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve %s schema: %w", name, err)
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal %s schema: %w", name, err)
	}
	return &shape[T]{name: name, raw: raw, resolved: resolved}, nil
}

func mustShape[T any](name string, refine func(*jsonschema.Schema)) *shape[T] {
	s, err := newShape[T](name, refine)
	if err != nil {
		panic(err)
	}
	return s
}

var (
	analysisShape = mustShape[models.ErrorAnalysis](models.ShapeErrorAnalysis, func(s *jsonschema.Schema) {
		s.Properties["urgency"].Enum = []any{
			string(models.SeverityHigh), string(models.SeverityMedium), string(models.SeverityLow),
		}
		lo, hi := 0.0, 1.0
		s.Properties["confidence"].Minimum = &lo
		s.Properties["confidence"].Maximum = &hi
	})

	solutionShape = mustShape[models.Solution](models.ShapeErrorSolution, nil)
)

// AnalysisSchema returns the JSON Schema an analysis response must satisfy.
func AnalysisSchema() json.RawMessage { return analysisShape.raw }

// SolutionSchema returns the JSON Schema a solution response must satisfy.
func SolutionSchema() json.RawMessage { return solutionShape.raw }

// decode parses a model response into T. Text that is not a JSON object
// yields ErrInvalidResponse; a JSON object of the wrong shape yields a
// *SchemaError. Nothing is coerced.
func (s *shape[T]) decode(text string) (T, error) {
	var out T
	body := stripCodeFence(text)

	var instance any
	if err := json.Unmarshal([]byte(body), &instance); err != nil {
		return out, fmt.Errorf("%w: %s response is not JSON: %v", ErrInvalidResponse, s.name, err)
	}
	if _, ok := instance.(map[string]any); !ok {
		return out, &SchemaError{Shape: s.name, Err: fmt.Errorf("expected a JSON object, got %T", instance)}
	}
	if err := s.resolved.Validate(instance); err != nil {
		return out, &SchemaError{Shape: s.name, Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, &SchemaError{Shape: s.name, Err: err}
	}
	return out, nil
}

// stripCodeFence removes a surrounding markdown code fence, which some models
// add even in JSON mode.
func stripCodeFence(text string) string {
	body := strings.TrimSpace(text)
	if !strings.HasPrefix(body, "```") {
		return body
	}
	body = strings.TrimPrefix(body, "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}
