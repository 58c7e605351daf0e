package extract

import (
	"fmt"

	"github.com/tidwall/gjson"
)

const previewLimit = 64

// ParseError reports that the sanitized text is not valid JSON
type ParseError struct {
	Input string // leading part of the rejected text
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("extract: invalid JSON near %q", e.Input)
}

// ShapeError reports valid JSON whose top level is not an array
type ShapeError struct {
	Got string // kind of the top-level value
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("extract: expected top-level array, got %s", e.Got)
}

// FieldError describes a single entry rejected by a normalizer.
// It is counted, never returned to callers of the pipeline.
type FieldError struct {
	Index  int
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("extract: entry %d dropped: %s", e.Index, e.Reason)
}

// ParseArray parses slice and requires an array at the top level.
// The returned entries keep their source order and may be empty.
func ParseArray(slice string) ([]gjson.Result, error) {
	if !gjson.Valid(slice) {
		return nil, &ParseError{Input: preview(slice)}
	}

	value := gjson.Parse(slice)
	if !value.IsArray() {
		return nil, &ShapeError{Got: kindOf(value)}
	}
	return value.Array(), nil
}

func kindOf(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return "null"
	case gjson.False, gjson.True:
		return "bool"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	}
	if v.IsObject() {
		return "object"
	}
	if v.IsArray() {
		return "array"
	}
	return "unknown"
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLimit {
		return s
	}
	return string(r[:previewLimit]) + "..."
}
