package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/widgetlabs/chatbot-widget/internal/config"
	"github.com/widgetlabs/chatbot-widget/internal/model/chat"
)

const systemPrompt = "You are the assistant behind a small embeddable chat widget. " +
	"Answer briefly and helpfully; plain text only, no markdown."

// Eino generates replies through an Ark chat model composed into an eino
// chain.
type Eino struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewEino compiles the prompt template and chat model into a runnable chain.
func NewEino(ctx context.Context, cfg config.AIConfig) (*Eino, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Eino{chain: runnable}, nil
}

// GetReply runs the chain over the conversation. The trailing self message is
// the query; earlier turns become history. Typing placeholders are skipped.
func (e *Eino) GetReply(ctx context.Context, conversation []chat.Message) (string, error) {
	query, history := splitConversation(conversation)
	if query == "" {
		return "", fmt.Errorf("conversation has no user message to answer")
	}

	response, err := e.chain.Invoke(ctx, map[string]any{
		"system":  systemPrompt,
		"history": history,
		"query":   query,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run chat chain: %w", err)
	}

	log.Debug().Int("length", len(response.Content)).Msg("generated assistant reply")
	return response.Content, nil
}

func splitConversation(messages []chat.Message) (string, []*schema.Message) {
	const historyLimit = 10

	query := ""
	last := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Sender == chat.SenderSelf {
			query = messages[i].Text
			last = i
			break
		}
	}
	if last < 0 {
		return "", nil
	}

	prior := messages[:last]
	start := 0
	if len(prior) > historyLimit {
		start = len(prior) - historyLimit
	}

	history := make([]*schema.Message, 0, len(prior)-start)
	for _, msg := range prior[start:] {
		if msg.IsTyping || msg.Text == "" {
			continue
		}
		switch msg.Sender {
		case chat.SenderSelf:
			history = append(history, schema.UserMessage(msg.Text))
		case chat.SenderAssistant:
			history = append(history, schema.AssistantMessage(msg.Text, nil))
		}
	}

	return query, history
}
