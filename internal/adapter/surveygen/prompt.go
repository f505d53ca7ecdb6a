package surveygen

import (
	"fmt"
	"strings"

	"survey-responder/internal/domain"
	"survey-responder/internal/persona"
)

func buildPrompt(req domain.AnswerRequest) string {
	var b strings.Builder

	b.WriteString("You are taking a survey as the person described below. ")
	b.WriteString("Stay in character and answer every question from their point of view.\n\n")

	if desc := persona.Describe(req.Persona); desc != "" {
		b.WriteString("Persona:\n")
		b.WriteString(desc)
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "Answer each question with exactly one of these options: %s\n\n", strings.Join(req.Options, ", "))

	b.WriteString("Questions:\n")
	for i, q := range req.Questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}

	b.WriteString("\nRespond with ONLY a JSON object mapping each question number to the chosen option, for example:\n")
	fmt.Fprintf(&b, `{"1": %q, "2": %q}`, req.Options[0], req.Options[len(req.Options)-1])
	b.WriteByte('\n')
	return b.String()
}
