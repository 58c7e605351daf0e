package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"jobassist/internal/types"
)

func TestFormatDispatch(t *testing.T) {
	registry := NewFormatterRegistry()

	posting := types.JobPostingOutput{
		Sections: []types.Section{{Title: "주요 업무", Content: "API 개발"}},
		Dropped:  2,
	}
	questions := types.ContactQuestionsOutput{Questions: [][]string{{"What stack?"}, {}}}
	plan := types.LearningPlanOutput{Steps: []types.Section{{Title: "Learn Kafka", Content: "Build a consumer"}}}
	profile := types.CanonicalProfile{
		Name:       "Kim",
		Headline:   "Backend Engineer",
		Contact:    types.ContactInfo{Email: "kim@example.com"},
		Skills:     []string{"Go", "Kafka"},
		Experience: []string{"Engineer at Acme"},
		Projects:   []types.Project{{Name: "jobassist", TechStack: []string{"Go"}}},
	}

	tests := []struct {
		name     string
		data     any
		format   string
		contains []string
	}{
		{"posting text", posting, "text", []string{"=== JOB POSTING ===", "[주요 업무]", "API 개발", "2 malformed entries"}},
		{"posting markdown", posting, "markdown", []string{"# Job Posting", "## 주요 업무"}},
		{"questions text", questions, "text", []string{"Contact 1:", "  - What stack?", "Contact 2:", "(no questions)"}},
		{"questions markdown", questions, "markdown", []string{"## Contact 1", "- What stack?", "_No questions._"}},
		{"plan text", plan, "text", []string{"Step 1: Learn Kafka", "Build a consumer"}},
		{"plan markdown", plan, "markdown", []string{"## 1. Learn Kafka"}},
		{"profile text", profile, "text", []string{"Name: Kim", "Email: kim@example.com", "=== SKILLS ===", "- Engineer at Acme", "Stack: Go"}},
		{"profile markdown", profile, "markdown", []string{"# Kim", "_Backend Engineer_", "## Skills", "### jobassist"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := registry.Format(tt.data, tt.format)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, out)
				}
			}
		})
	}
}

func TestFallbackNote(t *testing.T) {
	registry := NewFormatterRegistry()
	out, err := registry.Format(types.JobPostingOutput{
		Sections: []types.Section{{Title: "상세 내용", Content: "raw"}},
		Fallback: true,
	}, "text")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out, "could not be parsed") {
		t.Errorf("Expected fallback note, got:\n%s", out)
	}
}

func TestJSONFormatterHandlesAnyType(t *testing.T) {
	registry := NewFormatterRegistry()
	out, err := registry.Format(map[string]int{"n": 1}, "json")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var decoded map[string]int
	if err := json.Unmarshal([]byte(out), &decoded); err != nil || decoded["n"] != 1 {
		t.Errorf("Expected valid JSON, got %q (%v)", out, err)
	}
}

func TestUnknownFormat(t *testing.T) {
	registry := NewFormatterRegistry()
	if _, err := registry.Format(types.LearningPlanOutput{}, "yaml"); err == nil {
		t.Error("Expected error for unsupported format")
	}
	if _, err := registry.Format(map[string]int{}, "text"); err == nil {
		t.Error("Expected error for text output of an unknown type")
	}
}

func TestGetSupportedFormats(t *testing.T) {
	got := NewFormatterRegistry().GetSupportedFormats()
	want := []string{"json", "markdown", "text"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
