// Package validator はタスクのリクエストボディを JSON Schema で検証し、models.TaskInput に変換します。
package validator

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"go-task-api/backend/internal/models"
)

//go:embed schemas/task.schema.json
var taskSchemaJSON []byte

const taskSchemaURL = "https://go-task-api.local/schemas/task.schema.json"

// FieldError は検証に失敗した1項目です。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError はリクエストボディが受け付けられない場合のエラーです。
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator はコンパイル済みのタスクスキーマを保持します。
type Validator struct {
	schema *jsonschema.Schema
}

// New は埋め込みのスキーマをコンパイルして Validator を作成します。
func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	if err := compiler.AddResource(taskSchemaURL, bytes.NewReader(taskSchemaJSON)); err != nil {
		return nil, fmt.Errorf("could not load task schema: %w", err)
	}
	schema, err := compiler.Compile(taskSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("could not compile task schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// DecodeTask はボディを検証し、型変換済みの TaskInput を返します。
// 失敗した場合は *ValidationError を返します。
func (v *Validator) DecodeTask(body []byte) (*models.TaskInput, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &ValidationError{Errors: []FieldError{{Field: "body", Message: "invalid JSON"}}}
	}

	if err := v.schema.Validate(doc); err != nil {
		return nil, schemaValidationError(err)
	}

	var in models.TaskInput
	if err := json.Unmarshal(body, &in); err != nil {
		var fe *models.FieldError
		if errors.As(err, &fe) {
			return nil, &ValidationError{Errors: []FieldError{{Field: fe.Field, Message: fe.Message}}}
		}
		return nil, &ValidationError{Errors: []FieldError{{Field: "body", Message: err.Error()}}}
	}
	return &in, nil
}

func schemaValidationError(err error) *ValidationError {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &ValidationError{Errors: []FieldError{{Field: "body", Message: err.Error()}}}
	}

	byField := make(map[string]string)
	collectSchemaErrors(byField, ve)

	result := &ValidationError{}
	for field, msg := range byField {
		result.Errors = append(result.Errors, FieldError{Field: field, Message: msg})
	}
	sort.Slice(result.Errors, func(i, j int) bool {
		return result.Errors[i].Field < result.Errors[j].Field
	})
	return result
}

// collectSchemaErrors は末端のエラーをフィールドごとに1件ずつ集めます。
func collectSchemaErrors(byField map[string]string, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		field := jsonPointerToField(err.InstanceLocation)
		if _, exists := byField[field]; !exists {
			byField[field] = err.Message
		}
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(byField, cause)
	}
}

func jsonPointerToField(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return "body"
	}
	return strings.ReplaceAll(ptr, "/", ".")
}
