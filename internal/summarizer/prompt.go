package summarizer

import (
	"fmt"
	"unicode/utf8"
)

const systemPrompt = "You are a helpful assistant that summarizes markdown notes effectively."

// maxPromptChars caps the notes sent to a provider so the prompt stays well
// inside the context window of small models.
const maxPromptChars = 10000

func buildPrompt(notes string) string {
	return fmt.Sprintf(`Please provide a concise and well-structured summary of the following markdown notes.
Focus on the key points, main ideas, and any important details. Use bullet points or numbered lists where appropriate.
Maintain the markdown formatting where relevant.

Notes:
%s

Summary:`, truncateRunes(notes, maxPromptChars))
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit]) + "\n...(truncated)"
}
