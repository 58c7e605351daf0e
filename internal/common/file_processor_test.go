package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jobassist/internal/ai"
	"jobassist/internal/errors"
	"jobassist/internal/types"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestValidateAndReadFiles(t *testing.T) {
	resume := writeTemp(t, "resume.txt", "Go developer")
	job := writeTemp(t, "job.md", "# Backend Engineer")

	fp := NewFileProcessor(nil, 0)
	contents, err := fp.ValidateAndReadFiles(resume, job)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if contents[0] != "Go developer" || contents[1] != "# Backend Engineer" {
		t.Errorf("Unexpected contents %q", contents)
	}
}

func TestValidateAndReadFilesErrors(t *testing.T) {
	big := writeTemp(t, "big.txt", strings.Repeat("x", 64))

	tests := []struct {
		name     string
		filename string
		maxSize  int64
		code     string
	}{
		{"missing file", filepath.Join(t.TempDir(), "missing.txt"), 0, errors.ErrCodeFileNotFound},
		{"directory", t.TempDir(), 0, errors.ErrCodeFileNotReadable},
		{"too large", big, 16, errors.ErrCodeFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileProcessor(nil, tt.maxSize).ValidateAndReadFiles(tt.filename)
			appErr, ok := errors.AsAppError(err)
			if !ok || appErr.Code != tt.code {
				t.Errorf("Expected %s error, got %v", tt.code, err)
			}
		})
	}
}

func TestReadFileFromStdin(t *testing.T) {
	fp := NewFileProcessor(nil, 0)
	fp.stdin = strings.NewReader("posting from a pipe")

	contents, err := fp.ValidateAndReadFiles("-")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if contents[0] != "posting from a pipe" {
		t.Errorf("Expected stdin content, got %q", contents[0])
	}
}

func TestReadStdinRespectsMaxFileSize(t *testing.T) {
	fp := NewFileProcessor(nil, 8)
	fp.stdin = strings.NewReader("a posting longer than eight bytes")

	_, err := fp.ValidateAndReadFiles("-")
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeFileTooLarge {
		t.Errorf("Expected %s error, got %v", errors.ErrCodeFileTooLarge, err)
	}

	fp.stdin = strings.NewReader("12345678")
	contents, err := fp.ValidateAndReadFiles("-")
	if err != nil {
		t.Fatalf("Expected input at the limit to be accepted, got %v", err)
	}
	if contents[0] != "12345678" {
		t.Errorf("Expected stdin content, got %q", contents[0])
	}
}

func TestReadFileRejectsBrokenPDF(t *testing.T) {
	path := writeTemp(t, "resume.pdf", "not really a pdf")

	_, err := NewFileProcessor(nil, 0).ReadFile(path)
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeUnsupportedDocument {
		t.Errorf("Expected %s error, got %v", errors.ErrCodeUnsupportedDocument, err)
	}
}

func TestHandleOutput(t *testing.T) {
	output := types.JobPostingOutput{Sections: []types.Section{{Title: "자격요건", Content: "Go 3년"}}}

	t.Run("stdout", func(t *testing.T) {
		var buf bytes.Buffer
		oh := NewOutputHandler(nil)
		oh.stdout = &buf

		if err := oh.HandleOutput(output, CommandConfig{OutputFormat: "text"}); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !strings.Contains(buf.String(), "[자격요건]") {
			t.Errorf("Expected text output, got %q", buf.String())
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "posting.json")
		if err := NewOutputHandler(nil).HandleOutput(output, CommandConfig{OutputFile: path, OutputFormat: "json"}); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Expected output file, got %v", err)
		}
		if !strings.Contains(string(data), `"title": "자격요건"`) {
			t.Errorf("Expected JSON output, got %s", data)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		err := NewOutputHandler(nil).HandleOutput(output, CommandConfig{OutputFormat: "xml"})
		appErr, ok := errors.AsAppError(err)
		if !ok || appErr.Code != errors.ErrCodeInvalidFormat {
			t.Errorf("Expected %s error, got %v", errors.ErrCodeInvalidFormat, err)
		}
	})
}

func TestRunAICommand(t *testing.T) {
	job := writeTemp(t, "job.txt", "Backend Engineer")
	outFile := filepath.Join(t.TempDir(), "result.json")

	var seen types.JobPostingInput
	err := RunAICommand(context.Background(), nil,
		CommandConfig{OutputFile: outFile, OutputFormat: "json"},
		[]string{job},
		func(contents []string) (types.JobPostingInput, error) {
			return types.JobPostingInput{JobDescription: contents[0]}, nil
		},
		func(ctx context.Context, input types.JobPostingInput) (types.JobPostingOutput, *ai.TokenUsage, error) {
			seen = input
			return types.JobPostingOutput{Sections: []types.Section{{Title: "t", Content: "c"}}}, &ai.TokenUsage{TotalTokens: 3}, nil
		},
		nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if seen.JobDescription != "Backend Engineer" {
		t.Errorf("Expected file content as input, got %q", seen.JobDescription)
	}
	if _, err := os.Stat(outFile); err != nil {
		t.Errorf("Expected output file to be written: %v", err)
	}
}
