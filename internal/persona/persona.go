package persona

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"survey-responder/internal/domain"
)

// Load reads a persona JSON document. The document must be a JSON object.
func Load(path string) (*domain.Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewFileNotFoundError(fmt.Sprintf("Persona file not found: %s", path))
		}
		return nil, domain.NewInternalError(fmt.Sprintf("Failed to read persona file: %s", path), err)
	}
	return Parse(data)
}

// Parse decodes a persona document.
func Parse(data []byte) (*domain.Persona, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var attrs map[string]any
	if err := dec.Decode(&attrs); err != nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "Persona file must contain a JSON object", err)
	}
	if attrs == nil {
		return nil, domain.NewInvalidInputError("Persona file must contain a JSON object")
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, domain.NewError(domain.ErrInvalidInput, "Persona file must contain a single JSON object", err)
	}

	p := &domain.Persona{Attributes: attrs}
	if name, ok := attrs["name"].(string); ok {
		p.Name = name
	}
	return p, nil
}

// Describe renders the persona as "key: value" lines sorted by key.
// Non-string values are rendered as compact JSON.
func Describe(p *domain.Persona) string {
	if p == nil || len(p.Attributes) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p.Attributes))
	for k := range p.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString("- ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(renderValue(p.Attributes[k]))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	}
}
