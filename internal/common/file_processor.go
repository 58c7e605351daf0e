package common

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"jobassist/internal/documents"
	"jobassist/internal/errors"
	"jobassist/internal/utils"
)

// FileProcessor reads input documents as plain text and writes results
type FileProcessor struct {
	logger      *errors.Logger
	maxFileSize int64
	stdin       io.Reader
}

// NewFileProcessor creates a new file processor. A maxFileSize of 0 disables
// the size check.
func NewFileProcessor(logger *errors.Logger, maxFileSize int64) *FileProcessor {
	return &FileProcessor{logger: logger, maxFileSize: maxFileSize, stdin: os.Stdin}
}

// ReadFile returns the text of a document. PDF and DOCX files are converted;
// anything else is read as text. "-" reads standard input.
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	if utils.IsStdin(filename) {
		return fp.readStdin()
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}

	kind := documents.KindOf(filename)
	if kind == documents.KindUnknown {
		fp.logger.Warn("Unknown document type, reading as text", "filename", filename)
	}

	text, err := documents.ExtractText(kind, data)
	if err != nil {
		return "", errors.NewValidationError(errors.ErrCodeUnsupportedDocument,
			fmt.Sprintf("Cannot extract text from %s", filename), err)
	}
	return text, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}

func (fp *FileProcessor) readStdin() (string, error) {
	r := fp.stdin
	if fp.maxFileSize > 0 {
		r = io.LimitReader(r, fp.maxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable, "Failed to read standard input", err)
	}
	if fp.maxFileSize > 0 && int64(len(data)) > fp.maxFileSize {
		return "", errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("Standard input exceeds %s", utils.FormatFileSize(fp.maxFileSize)), utils.ErrFileTooLarge)
	}
	return string(data), nil
}

// ValidateAndReadFiles validates and reads multiple input files
func (fp *FileProcessor) ValidateAndReadFiles(filenames ...string) ([]string, error) {
	contents := make([]string, len(filenames))

	for i, filename := range filenames {
		if !utils.IsStdin(filename) {
			if err := utils.ValidateInputFile(filename, fp.maxFileSize); err != nil {
				return nil, inputFileError(filename, err)
			}
		}

		content, err := fp.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		contents[i] = content
	}

	return contents, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}
	return nil
}

func inputFileError(filename string, err error) error {
	switch {
	case stderrors.Is(err, utils.ErrFileMissing):
		return errors.NewIOError(errors.ErrCodeFileNotFound, fmt.Sprintf("File not found: %s", filename), err)
	case stderrors.Is(err, utils.ErrFileTooLarge):
		return errors.NewValidationError(errors.ErrCodeFileTooLarge, fmt.Sprintf("File too large: %s", filename), err)
	default:
		return errors.NewIOError(errors.ErrCodeFileNotReadable, fmt.Sprintf("Invalid file %s", filename), err)
	}
}
