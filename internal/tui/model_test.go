package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
	"docqa/internal/retrieval"
	"docqa/internal/service"
)

type stubChat struct {
	segments []string
	history  []domain.Message
	reply    service.Reply
}

func (s *stubChat) Respond(_ context.Context, _ string, history []domain.Message, segments []string) service.Reply {
	s.segments, s.history = segments, history
	return s.reply
}

// run executes cmd and returns the replyMsg it produces, if any.
func run(t *testing.T, cmd tea.Cmd) (replyMsg, bool) {
	t.Helper()
	if cmd == nil {
		return replyMsg{}, false
	}
	switch msg := cmd().(type) {
	case replyMsg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if r, ok := run(t, c); ok {
				return r, true
			}
		}
	}
	return replyMsg{}, false
}

func TestAskSendsSessionSegments(t *testing.T) {
	chat := &stubChat{reply: service.Reply{
		Text:      "Dogs bark.",
		Selection: retrieval.Selection{Segment: "Cats meow. Dogs bark loudly.", Index: 1, Score: 0.8},
	}}
	segments := []string{"intro", "Cats meow. Dogs bark loudly."}
	var m tea.Model = New(context.Background(), chat, "pets.txt", segments, "About pets.")

	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	model := m.(Model)
	model.input.SetValue("do dogs bark?")

	m, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.(Model).busy)
	assert.Empty(t, m.(Model).input.Value())

	reply, ok := run(t, cmd)
	require.True(t, ok)
	assert.Equal(t, segments, chat.segments)
	assert.Nil(t, chat.history)

	m, _ = m.Update(reply)
	model = m.(Model)
	assert.False(t, model.busy)
	require.Len(t, model.exchanges, 1)
	assert.Contains(t, model.status, "segment 2")
	assert.Contains(t, model.View(), "Dogs bark.")
}

func TestEnterIgnoredWhileBusyOrEmpty(t *testing.T) {
	var m tea.Model = New(context.Background(), &stubChat{}, "doc", []string{"a"}, "")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	model := m.(Model)
	model.busy = true
	model.input.SetValue("question")
	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestFallbackStatus(t *testing.T) {
	var m tea.Model = New(context.Background(), &stubChat{}, "doc", nil, "")
	m, _ = m.Update(replyMsg{question: "q", reply: service.Reply{
		Text:      service.FallbackNoRelevantInfo,
		Selection: retrieval.Selection{Index: -1, Reason: retrieval.ReasonBelowThreshold},
		Fallback:  true,
	}})
	assert.Equal(t, "No answer: below_threshold", m.(Model).status)
}

func TestQuitKeys(t *testing.T) {
	var m tea.Model = New(context.Background(), &stubChat{}, "doc", nil, "")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestViewBeforeResize(t *testing.T) {
	m := New(context.Background(), &stubChat{}, "doc", nil, "")
	assert.Equal(t, "Loading...", m.View())
}

func TestBestSentence(t *testing.T) {
	sentences := []string{"Cats meow.", "Dogs bark loudly.", "Birds sing."}
	assert.Equal(t, 1, bestSentence(sentences, "Why do dogs bark?"))
	assert.Equal(t, 0, bestSentence(sentences, "fish swim"))
	assert.Equal(t, -1, bestSentence(sentences, "the of"))
}
