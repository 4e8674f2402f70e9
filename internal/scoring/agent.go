package scoring

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/vmaretto/sigillo/pkg/formatting"
)

type agentClient struct {
	cfg    gaconfig.AgentConfig
	logger *slog.Logger
}

// NewAgentClient creates the production scoring client backed by a
// vision-capable model agent.
func NewAgentClient(cfg gaconfig.AgentConfig, logger *slog.Logger) Client {
	return &agentClient{
		cfg:    cfg,
		logger: logger.With("system", "scoring"),
	}
}

func (c *agentClient) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	a, err := agent.New(&c.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Vision(ctx, extractInstructions, []string{dataURI(image, mimeType)})
	if err != nil {
		return "", fmt.Errorf("vision call: %w", err)
	}

	text := strings.TrimSpace(resp.Content())
	if text == "" {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("text extracted", "chars", len(text))
	return text, nil
}

func (c *agentClient) AnalyzeConformity(ctx context.Context, text string) (*ConformityReport, error) {
	prompt := composePrompt(conformityInstructions, conformitySpec, "Label text:\n"+text)

	report, err := chatInto[ConformityReport](ctx, &c.cfg, prompt)
	if err != nil {
		return nil, err
	}

	c.logger.Debug(
		"conformity analyzed",
		"result", report.Result,
		"violations", len(report.Violations),
	)
	return report, nil
}

func (c *agentClient) CompareText(ctx context.Context, text string, ref ReferenceDescriptor) (*TextualComparison, error) {
	var sb strings.Builder
	sb.WriteString("Extracted label text:\n")
	sb.WriteString(text)
	sb.WriteString("\n\nReference label fields:\n")
	fmt.Fprintf(&sb, "- name: %s\n", ref.Name)
	fmt.Fprintf(&sb, "- producer: %s\n", ref.Producer)
	fmt.Fprintf(&sb, "- designation: %s\n", ref.Designation)
	fmt.Fprintf(&sb, "- region: %s\n", ref.Region)
	fmt.Fprintf(&sb, "- municipality: %s\n", ref.Municipality)
	fmt.Fprintf(&sb, "- label type: %s\n", ref.LabelType)

	prompt := composePrompt(textualCompareInstructions, textualCompareSpec, sb.String())

	comparison, err := chatInto[TextualComparison](ctx, &c.cfg, prompt)
	if err != nil {
		return nil, err
	}

	c.logger.Debug(
		"text compared",
		"reference", ref.Name,
		"score", comparison.MatchScore,
	)
	return comparison, nil
}

func (c *agentClient) CompareImages(ctx context.Context, candidate, reference Image) (*VisualComparison, error) {
	a, err := agent.New(&c.cfg)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}

	prompt := composePrompt(visualCompareInstructions, visualCompareSpec, "")
	images := []string{
		dataURI(candidate.Data, candidate.MimeType),
		dataURI(reference.Data, reference.MimeType),
	}

	resp, err := a.Vision(ctx, prompt, images)
	if err != nil {
		return nil, fmt.Errorf("vision call: %w", err)
	}

	comparison, err := formatting.Parse[VisualComparison](resp.Content())
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	c.logger.Debug(
		"images compared",
		"similarity", comparison.Similarity,
		"verdict", comparison.Verdict,
	)
	return &comparison, nil
}

func chatInto[T any](ctx context.Context, cfg *gaconfig.AgentConfig, prompt string) (*T, error) {
	a, err := agent.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("chat call: %w", err)
	}

	parsed, err := formatting.Parse[T](resp.Content())
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &parsed, nil
}

func composePrompt(instructions, spec, payload string) string {
	parts := []string{instructions, spec}
	if payload != "" {
		parts = append(parts, payload)
	}
	return strings.Join(parts, "\n\n")
}

func dataURI(data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
