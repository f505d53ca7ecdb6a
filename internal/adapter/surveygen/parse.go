package surveygen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// stripThinking removes a <think>...</think> block emitted by reasoning models.
func stripThinking(s string) string {
	s = strings.TrimSpace(s)
	if thinkStart := strings.Index(s, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(s, "</think>"); thinkEnd != -1 && thinkEnd > thinkStart {
			s = s[:thinkStart] + s[thinkEnd+len("</think>"):]
			s = strings.TrimSpace(s)
		}
	}
	return s
}

// extractJSONObject returns the text between the first '{' and the last '}'.
func extractJSONObject(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in LLM response: %q", s)
	}
	return s[start : end+1], nil
}

// parseAnswers maps a raw model reply onto one option label per question.
// The reply is either {"1": "label", ...} or {"answers": ["label", ...]}.
func parseAnswers(raw string, numQuestions int, options []string) ([]string, error) {
	obj, err := extractJSONObject(stripThinking(raw))
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(obj)))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON from LLM (tried to parse: '%s'): %w", obj, err)
	}

	values := make([]any, numQuestions)
	if list, ok := fields["answers"].([]any); ok {
		if len(list) != numQuestions {
			return nil, fmt.Errorf("expected %d answers, got %d", numQuestions, len(list))
		}
		copy(values, list)
	} else {
		for key, v := range fields {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(key, ".")))
			if err != nil || n < 1 || n > numQuestions {
				continue
			}
			values[n-1] = v
		}
	}

	answers := make([]string, numQuestions)
	for i, v := range values {
		if v == nil {
			return nil, fmt.Errorf("missing answer for question %d", i+1)
		}
		label, ok := matchOption(fmt.Sprint(v), options)
		if !ok {
			return nil, fmt.Errorf("answer %q for question %d is not one of the response options", fmt.Sprint(v), i+1)
		}
		answers[i] = label
	}
	return answers, nil
}

// matchOption resolves a model answer to a canonical option label. Labels
// match case-insensitively; otherwise a bare integer k selects option k.
func matchOption(answer string, options []string) (string, bool) {
	a := strings.TrimSpace(strings.Trim(strings.TrimSpace(answer), `"'.`))
	for _, opt := range options {
		if strings.EqualFold(a, opt) {
			return opt, true
		}
	}
	if k, err := strconv.Atoi(a); err == nil && k >= 1 && k <= len(options) {
		return options[k-1], true
	}
	return "", false
}
