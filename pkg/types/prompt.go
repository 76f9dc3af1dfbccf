package types

import (
	"fmt"
	"strings"
)

// Prompt is a managed prompt. Prompt holds a string for text prompts and a
// list of {role, content} objects for chat prompts.
type Prompt struct {
	Name    string         `json:"name"`
	Version int            `json:"version,omitempty"`
	Type    PromptType     `json:"type,omitempty"`
	Prompt  any            `json:"prompt"`
	Config  map[string]any `json:"config,omitempty"`
	Labels  []string       `json:"labels,omitempty"`
	Tags    []string       `json:"tags,omitempty"`
}

// ChatMessage is one message of a chat prompt.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompilationError collects every problem found while compiling a prompt.
type CompilationError struct {
	Errors []error
}

func (e *CompilationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "langfuse: prompt compilation failed"
	case 1:
		return "langfuse: prompt compilation failed: " + e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("langfuse: prompt compilation failed with %d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Compile substitutes {{name}} placeholders in a text prompt.
func (p *Prompt) Compile(vars map[string]string) (string, error) {
	s, ok := p.Prompt.(string)
	if !ok {
		return "", fmt.Errorf("langfuse: prompt %q is not a text prompt", p.Name)
	}
	return substitute(s, vars), nil
}

// CompileChat substitutes placeholders in every message of a chat prompt.
// Messages that are malformed are skipped and reported in a
// *CompilationError alongside the messages that did compile.
func (p *Prompt) CompileChat(vars map[string]string) ([]ChatMessage, error) {
	raw, ok := p.Prompt.([]any)
	if !ok {
		return nil, fmt.Errorf("langfuse: prompt %q is not a chat prompt", p.Name)
	}

	var errs []error
	out := make([]ChatMessage, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			errs = append(errs, fmt.Errorf("message %d: expected object, got %T", i, item))
			continue
		}
		role, okRole := m["role"].(string)
		content, okContent := m["content"].(string)
		if !okRole || !okContent {
			errs = append(errs, fmt.Errorf("message %d: role and content must be strings", i))
			continue
		}
		out = append(out, ChatMessage{Role: role, Content: substitute(content, vars)})
	}

	if len(errs) > 0 {
		return out, &CompilationError{Errors: errs}
	}
	return out, nil
}

func substitute(s string, vars map[string]string) string {
	for k, v := range vars {
		s = strings.ReplaceAll(s, "{{"+k+"}}", v)
	}
	return s
}
