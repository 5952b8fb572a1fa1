package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const narratorSystemPrompt = `You are a mountaineering training coach reviewing a climber's computed training insights. Write a short, encouraging summary paragraph (3-5 sentences) that ties the insights together. Refer to concrete numbers from the insights. Do not invent data that is not in the insights.`

// Narrator turns computed insights into a short natural-language summary.
// It is optional: the deterministic engine never depends on it.
type Narrator struct {
	client openai.Client
	logger *slog.Logger
}

// NewNarrator creates a narrator backed by the chat completion API.
func NewNarrator(apiKey string, logger *slog.Logger) *Narrator {
	return &Narrator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		logger: logger,
	}
}

// Narrate produces a summary paragraph over the insights. An empty insight
// list narrates to an empty string without calling the API.
func (n *Narrator) Narrate(ctx context.Context, insights []Insight) (string, error) {
	if len(insights) == 0 {
		return "", nil
	}

	var prompt strings.Builder
	prompt.WriteString("Computed training insights for the window:\n\n")
	for _, ins := range insights {
		fmt.Fprintf(&prompt, "- [%s, confidence %.2f] %s: %s\n",
			ins.Type, ins.Confidence, ins.Title, ins.Description)
	}

	completion, err := n.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4oMini,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(narratorSystemPrompt),
			openai.UserMessage(prompt.String()),
		},
	})
	if err != nil {
		return "", fmt.Errorf("narrate insights: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}

	n.logger.LogAttrs(ctx, slog.LevelDebug, "narrated insights",
		slog.Int("insights", len(insights)),
		slog.Int64("total_tokens", completion.Usage.TotalTokens))

	return completion.Choices[0].Message.Content, nil
}
