package nlp

import (
	"context"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// ChatClientStub is an in-memory ChatClient returning a canned reply.
type ChatClientStub struct {
	mu       sync.RWMutex
	reply    string
	err      error
	requests []openai.ChatCompletionRequest
}

func NewChatClientStub() *ChatClientStub {
	return &ChatClientStub{}
}

func (c *ChatClientStub) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests = append(c.requests, req)

	if c.err != nil {
		return openai.ChatCompletionResponse{}, c.err
	}

	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: c.reply,
				},
			},
		},
	}, nil
}

// Helper methods for test setup

func (c *ChatClientStub) SetReply(reply string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reply = reply
}

func (c *ChatClientStub) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *ChatClientStub) Requests() []openai.ChatCompletionRequest {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]openai.ChatCompletionRequest, len(c.requests))
	copy(result, c.requests)
	return result
}

func (c *ChatClientStub) LastRequest() (openai.ChatCompletionRequest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.requests) == 0 {
		return openai.ChatCompletionRequest{}, false
	}
	return c.requests[len(c.requests)-1], true
}

// Reset clears all data
func (c *ChatClientStub) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reply = ""
	c.err = nil
	c.requests = nil
}
