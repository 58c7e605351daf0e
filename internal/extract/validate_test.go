package extract

import (
	"errors"
	"testing"
)

func TestParseArray(t *testing.T) {
	tests := []struct {
		name          string
		slice         string
		expectedLen   int
		expectParse   bool
		expectShape   bool
		expectedShape string
	}{
		{name: "empty string", slice: "", expectParse: true},
		{name: "truncated array", slice: "[1,", expectParse: true},
		{name: "prose", slice: "no json here at all", expectParse: true},
		{name: "single object rejected", slice: `{"title":"x","content":"y"}`, expectShape: true, expectedShape: "object"},
		{name: "number rejected", slice: "42", expectShape: true, expectedShape: "number"},
		{name: "string rejected", slice: `"[1]"`, expectShape: true, expectedShape: "string"},
		{name: "null rejected", slice: "null", expectShape: true, expectedShape: "null"},
		{name: "empty array", slice: "[]", expectedLen: 0},
		{name: "mixed entries", slice: `[1, "a", {"b": null}, [true]]`, expectedLen: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ParseArray(tt.slice)

			var parseErr *ParseError
			var shapeErr *ShapeError
			switch {
			case tt.expectParse:
				if !errors.As(err, &parseErr) {
					t.Fatalf("Expected ParseError, got %v", err)
				}
			case tt.expectShape:
				if !errors.As(err, &shapeErr) {
					t.Fatalf("Expected ShapeError, got %v", err)
				}
				if shapeErr.Got != tt.expectedShape {
					t.Errorf("Expected shape %q, got %q", tt.expectedShape, shapeErr.Got)
				}
			default:
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				if len(entries) != tt.expectedLen {
					t.Errorf("Expected %d entries, got %d", tt.expectedLen, len(entries))
				}
			}
		})
	}
}

func TestParseErrorPreviewIsBounded(t *testing.T) {
	long := ""
	for range 200 {
		long += "가"
	}

	_, err := ParseArray(long)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected ParseError, got %v", err)
	}
	if got := len([]rune(parseErr.Input)); got != previewLimit+3 {
		t.Errorf("Expected preview of %d runes, got %d", previewLimit+3, got)
	}
}
