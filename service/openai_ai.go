package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/tieubaoca/docqa-be/types"
)

// zeroTemperature stands in for 0: go-openai drops a zero temperature from
// the request body, which makes the server apply its default instead.
const zeroTemperature = math.SmallestNonzeroFloat32

type OpenAIService struct {
	client ChatClient
	model  string
	policy ProviderPolicy
}

func NewOpenAIService(client ChatClient, model string, policy ProviderPolicy) *OpenAIService {
	return &OpenAIService{
		client: client,
		model:  model,
		policy: policy,
	}
}

// Complete sends one chat completion request and returns the first choice.
func (s *OpenAIService) Complete(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionMessage, error) {
	request.Model = s.model

	var resp openai.ChatCompletionResponse
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = s.client.CreateChatCompletion(ctx, request)
		return err
	})
	if err != nil {
		return openai.ChatCompletionMessage{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return openai.ChatCompletionMessage{}, ErrNoCompletion
	}
	return resp.Choices[0].Message, nil
}

// ToolSet is the set of functions a model may call during one RunTools loop.
type ToolSet struct {
	handlers map[string]types.FunctionHandler
	tools    []openai.Tool
}

func NewToolSet() *ToolSet {
	return &ToolSet{
		handlers: make(map[string]types.FunctionHandler),
	}
}

func (t *ToolSet) Register(name, description string, params jsonschema.Definition, handler types.FunctionHandler) {
	f := openai.FunctionDefinition{
		Name:        name,
		Description: description,
		Parameters:  params,
	}
	t.handlers[name] = handler
	t.tools = append(t.tools, openai.Tool{
		Type:     openai.ToolTypeFunction,
		Function: &f,
	})
}

func (t *ToolSet) Tools() []openai.Tool {
	return t.tools
}

// call runs one tool call. Failures are returned as text so the model can
// correct itself on the next turn.
func (t *ToolSet) call(ctx context.Context, toolCall openai.ToolCall) string {
	handler := t.handlers[toolCall.Function.Name]
	if handler == nil {
		return fmt.Sprintf("error: unknown tool %q", toolCall.Function.Name)
	}
	result, err := handler(ctx, []byte(toolCall.Function.Arguments))
	if err != nil {
		return "error: " + err.Error()
	}
	return result
}

// RunTools lets the model call tools until it replies without tool calls.
// It returns that reply, or ErrAgentIterationLimit after maxIterations
// model turns.
func (s *OpenAIService) RunTools(ctx context.Context, messages []openai.ChatCompletionMessage, tools *ToolSet, maxIterations int, temperature float32) (string, error) {
	for i := 0; i < maxIterations; i++ {
		msg, err := s.Complete(ctx, openai.ChatCompletionRequest{
			Messages:    messages,
			Tools:       tools.Tools(),
			Temperature: temperature,
		})
		if err != nil {
			return "", err
		}
		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}

		messages = append(messages, msg)
		for _, toolCall := range msg.ToolCalls {
			result := tools.call(ctx, toolCall)
			log.Ctx(ctx).Debug().
				Str("tool", toolCall.Function.Name).
				RawJSON("args", rawArgs(toolCall.Function.Arguments)).
				Str("result", result).
				Msg("Tool call")
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				Name:       toolCall.Function.Name,
				ToolCallID: toolCall.ID,
			})
		}
	}
	return "", ErrAgentIterationLimit
}

func rawArgs(args string) []byte {
	if json.Valid([]byte(args)) {
		return []byte(args)
	}
	b, _ := json.Marshal(args)
	return b
}
