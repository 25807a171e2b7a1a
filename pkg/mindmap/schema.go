package mindmap

import (
	"bytes"
	_ "embed"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/matzehuels/mindpack/pkg/errors"
)

//go:embed document.schema.json
var documentSchema []byte

const schemaURL = "document.schema.json"

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

// Issue is a single schema violation.
type Issue struct {
	Location string `json:"location"` // JSON pointer into the input, "" for the document
	Message  string `json:"message"`
}

// SchemaError lists every schema violation found in a document.
type SchemaError struct {
	Issues []Issue
	Cause  error
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "/"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *SchemaError) Unwrap() error { return e.Cause }

// Schema returns the embedded JSON Schema for input documents.
func Schema() []byte {
	return bytes.Clone(documentSchema)
}

// Validate checks the shape of a decoded document against the embedded schema.
// Violations are returned as a MALFORMED_INPUT error wrapping a [SchemaError].
func Validate(raw any) error {
	schema, err := compiledSchema()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "compile document schema")
	}
	if err := checkPlain(raw, ""); err != nil {
		return err
	}
	if err := schema.Validate(raw); err != nil {
		issues := collectIssues(err)
		return errors.Wrap(errors.ErrCodeMalformedInput, &SchemaError{Issues: issues, Cause: err},
			"document does not match the mind-map schema")
	}
	return nil
}

// Issues extracts schema issues from an error returned by Validate.
// Other errors yield a single issue carrying their message.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	var schemaErr *SchemaError
	if stderrors.As(err, &schemaErr) {
		return schemaErr.Issues
	}
	return []Issue{{Message: errors.UserMessage(err)}}
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, bytes.NewReader(documentSchema)); err != nil {
			schemaErr = err
			return
		}
		schemaCompiled, schemaErr = compiler.Compile(schemaURL)
	})
	return schemaCompiled, schemaErr
}

func collectIssues(err error) []Issue {
	var validationErr *jsonschema.ValidationError
	if !stderrors.As(err, &validationErr) {
		return []Issue{{Message: err.Error()}}
	}
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return issues
}

// checkPlain rejects values the schema validator cannot represent, such as
// YAML mappings with non-string keys or timestamps.
func checkPlain(v any, location string) error {
	switch val := v.(type) {
	case nil, bool, string, float64, int, int64, uint64:
		return nil
	case []any:
		for i, item := range val {
			if err := checkPlain(item, fmt.Sprintf("%s/%d", location, i)); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		for key, item := range val {
			if err := checkPlain(item, location+"/"+key); err != nil {
				return err
			}
		}
		return nil
	default:
		issue := Issue{Location: location, Message: fmt.Sprintf("unsupported value of type %T", v)}
		return errors.Wrap(errors.ErrCodeMalformedInput, &SchemaError{Issues: []Issue{issue}},
			"document does not match the mind-map schema")
	}
}
