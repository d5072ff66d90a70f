package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgallion1/memoire/internal/outline"
)

// GenerateOutline asks the model for a thesis outline. When the reply is not
// the expected JSON it is read as a plain table of contents instead.
func (c *Client) GenerateOutline(ctx context.Context, b Brief) ([]outline.Chapter, error) {
	text, err := c.Complete(ctx, Request{
		Kind:        CallOutline,
		System:      systemPrompt,
		Prompt:      BuildOutlinePrompt(b),
		MaxTokens:   2048,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}
	chapters := ParseOutlineReply(text)
	if len(chapters) == 0 {
		return nil, fmt.Errorf("model returned an empty outline")
	}
	return chapters, nil
}

// ParseOutlineReply reads a model reply as JSON outline items, falling back
// to the text heuristics of outline.Parse.
func ParseOutlineReply(text string) []outline.Chapter {
	body := stripCodeBlock(text)
	var items []OutlineItem
	if err := json.Unmarshal([]byte(body), &items); err == nil {
		return BuildOutline(items)
	}
	return outline.Parse(body)
}

// DraftSection writes the Markdown content of one section.
func (c *Client) DraftSection(ctx context.Context, s SectionBrief) (string, error) {
	text, err := c.Complete(ctx, Request{
		Kind:        CallDraft,
		System:      systemPrompt,
		Prompt:      BuildSectionPrompt(s),
		MaxTokens:   4096,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(stripCodeBlock(text))
	if text == "" {
		return "", fmt.Errorf("model returned an empty section")
	}
	return text, nil
}

// Assist runs one of the utility tools on the student's input.
func (c *Client) Assist(ctx context.Context, t Tool, input string) (string, error) {
	if err := ScreenInput(input); err != nil {
		return "", err
	}
	prompt, err := BuildToolPrompt(t, input)
	if err != nil {
		return "", err
	}
	return c.Complete(ctx, Request{
		Kind:        CallAssist,
		Prompt:      prompt,
		MaxTokens:   2048,
		Temperature: 0.5,
	})
}
