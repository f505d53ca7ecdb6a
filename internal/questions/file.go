// Package questions manages the plaintext questions file: one question per
// line, addressed by 1-based line number.
package questions

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"survey-responder/internal/domain"
)

// Load returns the trimmed, non-empty lines of the questions file in order.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()

	var questions []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if q := strings.TrimSpace(scanner.Text()); q != "" {
			questions = append(questions, q)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.NewInternalError(fmt.Sprintf("Failed to read questions file: %s", path), err)
	}
	return questions, nil
}

// List writes the questions as "<n>. <question>" lines.
func List(w io.Writer, path string) error {
	questions, err := Load(path)
	if err != nil {
		return err
	}
	for i, q := range questions {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, q); err != nil {
			return err
		}
	}
	return nil
}

// Add appends one trimmed question, creating the file if needed, and
// returns the text that was written.
func Add(path, text string) (string, error) {
	q := strings.TrimSpace(text)
	if q == "" {
		return "", domain.NewInvalidInputError("Question text cannot be empty")
	}
	if strings.ContainsAny(q, "\r\n") {
		return "", domain.NewInvalidInputError("Question text must be a single line")
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return "", openError(path, err)
	}
	defer f.Close()

	line := q + "\n"
	needsNewline, err := missingTrailingNewline(f)
	if err != nil {
		return "", domain.NewInternalError(fmt.Sprintf("Failed to read questions file: %s", path), err)
	}
	if needsNewline {
		line = "\n" + line
	}
	if _, err := f.WriteString(line); err != nil {
		return "", domain.NewInternalError(fmt.Sprintf("Failed to write questions file: %s", path), err)
	}
	return q, f.Close()
}

// Delete removes the question at 1-based position n and rewrites the file.
// The file is left untouched when n is out of range.
func Delete(path string, n int) (string, error) {
	questions, err := Load(path)
	if err != nil {
		return "", err
	}
	if n < 1 || n > len(questions) {
		return "", domain.NewInvalidInputError(fmt.Sprintf("Invalid line number: %d", n))
	}

	removed := questions[n-1]
	remaining := append(questions[:n-1:n-1], questions[n:]...)
	if err := rewrite(path, remaining); err != nil {
		return "", domain.NewInternalError(fmt.Sprintf("Failed to write questions file: %s", path), err)
	}
	return removed, nil
}

func missingTrailingNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}

// rewrite replaces the file through a temp file in the same directory.
func rewrite(path string, questions []string) error {
	var buf bytes.Buffer
	for _, q := range questions {
		buf.WriteString(q)
		buf.WriteByte('\n')
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".questions-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func openError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewError(domain.ErrFileNotFound, fmt.Sprintf("Questions file not found: %s", path), nil)
	}
	return domain.NewInternalError(fmt.Sprintf("Failed to open questions file: %s", path), err)
}
