package providers

import "strings"

func FormatInstructions(instr []string) string {
	if len(instr) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("[Instructions]\n")
	for _, rule := range instr {
		if strings.TrimSpace(rule) == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(rule)
		b.WriteByte('\n')
	}
	return b.String()
}

// SystemPromptWithInstructions appends the formatted instructions to the
// system prompt so providers without a separate instruction channel see them.
func SystemPromptWithInstructions(config *Config) string {
	instr := FormatInstructions(config.Instructions)
	switch {
	case instr == "":
		return config.SystemPrompt
	case config.SystemPrompt == "":
		return instr
	default:
		return config.SystemPrompt + "\n\n" + instr
	}
}

// PoolKey identifies a reusable SDK client.
func PoolKey(c Credentials) string {
	return c.BaseURL + "|" + c.ApiKey
}
