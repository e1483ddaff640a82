package chat

import (
	"os"
	"strings"
)

// defaultInstructions keeps the assistant functional when the instruction
// document is missing from the deployment.
const defaultInstructions = "You are a helpful sales assistant for Norvia Gel Glove."

// LoadInstructions reads the fixed instruction document, falling back to a
// minimal default when the file is absent or empty.
func LoadInstructions(path string) string {
	if strings.TrimSpace(path) == "" {
		return defaultInstructions
	}
	data, err := os.ReadFile(path)
	if err != nil || len(strings.TrimSpace(string(data))) == 0 {
		return defaultInstructions
	}
	return string(data)
}

// SystemPrompt combines the instruction document with the locale directive.
func SystemPrompt(instructions, locale string) string {
	language := "English"
	if locale == "nl" {
		language = "Dutch"
	}
	return instructions + "\n\nThe customer is speaking " + language + ". Always respond in the same language as the customer."
}
