package summarizer

import (
	"context"
	"strings"

	"news-digest/internal/usecase/digest"
)

// NoOp returns a fixed digest skeleton without calling any model.
// Used for local development when no API key is configured.
type NoOp struct {
	skeleton string
}

// NewNoOp creates a new NoOp summarizer.
func NewNoOp() *NoOp {
	return &NoOp{skeleton: noopSkeleton()}
}

func noopSkeleton() string {
	headers := digest.SectionHeaders()
	labels := digest.BulletLabels()

	var sb strings.Builder
	for i, h := range headers {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(h)
		sb.WriteString("\n")
		sb.WriteString("* No model configured; set SUMMARIZER_TYPE to generate a digest.\n")
		for _, l := range labels[i*2 : i*2+2] {
			sb.WriteString("    * **")
			sb.WriteString(l)
			sb.WriteString(":** n/a\n")
		}
	}
	return sb.String()
}

// Summarize ignores the prompt and returns the skeleton.
func (n *NoOp) Summarize(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return n.skeleton, nil
}

// Provider implements Client.
func (n *NoOp) Provider() string { return ProviderNoOp }

// Close implements Client.
func (n *NoOp) Close() error { return nil }
