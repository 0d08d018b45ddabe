// Package chat answers nutrition questions and drives plan edits from
// natural-language messages.
package chat

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"text/template"
	"time"
	"unicode"

	"fitia-backend/internal/llm"
	"fitia-backend/internal/plan"
)

//go:embed chat_prompt.md
var chatPrompt string

const (
	IntentChangeMeal = "CHANGE_MEAL"
	IntentQuestion   = "QUESTION"
	IntentUnknown    = "unknown"

	fallbackMessage = "Estoy teniendo problemas para pensar claramente ahora mismo. Por favor intenta de nuevo."
)

// Entities are the structured slots extracted from a user message.
type Entities struct {
	MealType     string   `json:"meal_type"`
	FoodKeywords []string `json:"food_keywords"`
}

// Reply is the assistant's answer, possibly carrying the outcome of a plan
// edit triggered by a CHANGE_MEAL intent.
type Reply struct {
	Intent   string           `json:"intent"`
	Entities *Entities        `json:"entities,omitempty"`
	Message  string           `json:"message"`
	Action   *plan.SwapResult `json:"action_result,omitempty"`
}

// Assistant extracts intent from user messages via the text generator and
// executes meal substitutions when asked to.
type Assistant struct {
	textGen     llm.TextGenerator
	substituter *plan.Substituter
}

// NewAssistant creates an Assistant over the given collaborators.
func NewAssistant(textGen llm.TextGenerator, substituter *plan.Substituter) *Assistant {
	return &Assistant{textGen: textGen, substituter: substituter}
}

// HandleMessage processes one user message. Generator failures degrade to a
// friendly Spanish error reply; only store transport failures surface as an
// error.
func (a *Assistant) HandleMessage(ctx context.Context, userID, message string) (Reply, llm.AgentMeta, error) {
	start := time.Now()
	meta := llm.AgentMeta{AgentName: "ChatAssistant"}

	prompt, err := buildChatPrompt(message)
	if err != nil {
		log.Printf("Error building chat prompt: %v", err)
		return Reply{Intent: IntentUnknown, Message: fallbackMessage}, meta, nil
	}

	resp, err := a.textGen.GenerateContent(ctx, prompt)
	meta.Usage = resp.Usage
	meta.Latency = time.Since(start)
	if err != nil {
		log.Printf("Error calling generator for chat: %v", err)
		return Reply{Intent: IntentUnknown, Message: fallbackMessage}, meta, nil
	}

	reply, err := decodeReply(resp.Content)
	if err != nil {
		log.Printf("Error parsing chat response: %v", err)
		return Reply{Intent: IntentUnknown, Message: fallbackMessage}, meta, nil
	}

	if reply.Intent == IntentChangeMeal && reply.Entities != nil && reply.Entities.MealType != "" {
		mealType := capitalize(reply.Entities.MealType)
		result, err := a.substituter.UpdateLatestPlanMeal(ctx, userID, mealType, reply.Entities.FoodKeywords)
		if err != nil {
			return Reply{}, meta, err
		}
		reply.Action = &result
		if result.Success {
			reply.Message += fmt.Sprintf("\n\nDone! %s", result.Message)
		} else {
			reply.Message += fmt.Sprintf("\n\n(I tried to change it but: %s)", result.Message)
		}
	}

	return reply, meta, nil
}

// decodeReply strictly decodes the generator output. When the strict decode
// fails, the outermost brace span is tried once as a last resort before
// giving up.
func decodeReply(raw string) (Reply, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var reply Reply
	if err := json.Unmarshal([]byte(text), &reply); err == nil {
		return reply, nil
	}

	open := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if open == -1 || end <= open {
		return Reply{}, fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(text[open:end+1]), &reply); err != nil {
		return Reply{}, fmt.Errorf("failed to parse chat reply: %w", err)
	}
	return reply, nil
}

func buildChatPrompt(message string) (string, error) {
	tmpl, err := template.New("chat").Parse(chatPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Message string }{Message: message}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// capitalize uppercases the first rune and lowercases the rest, so "dinner"
// and "DINNER" both match the stored "Dinner" label.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
