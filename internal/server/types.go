package server

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"docqa/internal/domain"
)

var validate = validator.New()

// HistoryMessage is one prior conversation entry sent with a question.
type HistoryMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

// QuestionParams is the body of POST /api/v1/question. Segments are the
// ones returned by the upload endpoint.
type QuestionParams struct {
	Question string           `json:"question" validate:"required"`
	Segments []string         `json:"segments"`
	History  []HistoryMessage `json:"history" validate:"dive"`
}

// Validate returns field errors keyed by field name, or nil.
func (p *QuestionParams) Validate() map[string]string {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"request": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, e := range verrs {
		out[e.Namespace()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
	}
	return out
}

// Messages converts the history to domain messages.
func (p *QuestionParams) Messages() []domain.Message {
	out := make([]domain.Message, 0, len(p.History))
	for _, m := range p.History {
		out = append(out, domain.Message{Role: domain.Role(m.Role), Content: m.Content})
	}
	return out
}

// UploadResponse is returned by POST /api/v1/upload.
type UploadResponse struct {
	Message  string   `json:"message"`
	FileID   string   `json:"file_id"`
	Filename string   `json:"filename"`
	Segments []string `json:"segments"`
	Summary  string   `json:"summary,omitempty"`
}

// AnswerResponse is returned by POST /api/v1/question.
type AnswerResponse struct {
	Answer       string  `json:"answer"`
	SegmentIndex int     `json:"segment_index"`
	Score        float64 `json:"score"`
	Reason       string  `json:"reason"`
}
