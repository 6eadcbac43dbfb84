package ports

import "context"

// Generator is the hosted language-model completion service. GenerateJSON
// submits a prompt constrained to JSON output and returns the raw document
// bytes; callers own shape validation and fallback handling. GenerateText
// submits a prompt for plain-text output, used where the artifact is not
// JSON (LaTeX resume generation).
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) ([]byte, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}
