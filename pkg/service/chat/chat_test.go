package chat_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
	"github.com/skyelectric/reglens/pkg/service/chat"
)

type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{"answer"}}, nil
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) History() (*gollem.History, error) { return nil, nil }

func (s *mockLLMSession) AppendHistory(*gollem.History) error { return nil }

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

type mockLLMClient struct {
	lastInput string
	response  string
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return &mockLLMSession{
		generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
			for _, in := range input {
				if text, ok := in.(gollem.Text); ok {
					c.lastInput = string(text)
				}
			}
			resp := c.response
			if resp == "" {
				resp = "answer"
			}
			return &gollem.Response{Texts: []string{resp}}, nil
		},
	}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func history(n int) []*model.ChatMessage {
	var msgs []*model.ChatMessage
	for i := 0; i < n; i++ {
		role := types.RoleUser
		if i%2 == 1 {
			role = types.RoleAssistant
		}
		msgs = append(msgs, &model.ChatMessage{
			Role:    role,
			Content: fmt.Sprintf("message %d", i),
		})
	}
	return msgs
}

func TestHasRelevantInfo(t *testing.T) {
	gt.Bool(t, chat.HasRelevantInfo("The breaker is rated 16A.")).True()
	gt.Bool(t, chat.HasRelevantInfo("NO_RELEVANT_INFO")).False()
	gt.Bool(t, chat.HasRelevantInfo("I found nothing: NO_RELEVANT_INFO.")).False()
}

func TestAnswerFromSourceHistoryWindow(t *testing.T) {
	llm := &mockLLMClient{}
	svc, err := chat.New(llm)
	gt.NoError(t, err).Required()

	_, err = svc.AnswerFromSource(context.Background(), "what is the rating?", "ctx", "KNOWLEDGE BASE", history(12))
	gt.NoError(t, err).Required()

	// only the trailing 6 messages survive the window
	gt.Bool(t, strings.Contains(llm.lastInput, "message 6")).True()
	gt.Bool(t, strings.Contains(llm.lastInput, "message 11")).True()
	gt.Bool(t, strings.Contains(llm.lastInput, "message 5")).False()
	gt.Bool(t, strings.Contains(llm.lastInput, "what is the rating?")).True()
}

func TestAnswerGeneralHistoryWindow(t *testing.T) {
	llm := &mockLLMClient{}
	svc, err := chat.New(llm)
	gt.NoError(t, err).Required()

	_, err = svc.AnswerGeneral(context.Background(), "hello", "No document context available.", history(12))
	gt.NoError(t, err).Required()

	// the general fallback keeps 10 messages
	gt.Bool(t, strings.Contains(llm.lastInput, "message 2")).True()
	gt.Bool(t, strings.Contains(llm.lastInput, "message 1\n")).False()
}

func TestAnswerFromSourceRoleLabels(t *testing.T) {
	llm := &mockLLMClient{}
	svc, err := chat.New(llm)
	gt.NoError(t, err).Required()

	msgs := []*model.ChatMessage{
		{Role: types.RoleUser, Content: "first question"},
		{Role: types.RoleAssistant, Content: "first answer"},
	}
	_, err = svc.AnswerFromSource(context.Background(), "follow-up", "ctx", "UPLOADED DOCUMENT", msgs)
	gt.NoError(t, err).Required()

	gt.Bool(t, strings.Contains(llm.lastInput, "User: first question")).True()
	gt.Bool(t, strings.Contains(llm.lastInput, "Assistant: first answer")).True()
	gt.Bool(t, strings.Contains(llm.lastInput, "User: follow-up")).True()
}

func TestSynthesizePassesQuery(t *testing.T) {
	llm := &mockLLMClient{response: "merged [KB] and [DOC] answer\n\nSOURCES:\n- [KB] File: iec.pdf"}
	svc, err := chat.New(llm)
	gt.NoError(t, err).Required()

	answer, err := svc.Synthesize(context.Background(), "what is the limit?",
		"kb answer", "doc answer", "- [KB] File: iec.pdf", "- [DOC] File: plan.pdf")
	gt.NoError(t, err).Required()
	gt.Value(t, llm.lastInput).Equal("what is the limit?")
	gt.Bool(t, strings.Contains(answer, "SOURCES:")).True()
}
