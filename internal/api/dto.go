package api

import (
	"strings"
	"unicode/utf8"
)

const maxMessageRunes = 1000

// FieldError is one validation failure, reported per field in the error
// envelope.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type sendMessageRequest struct {
	Content        string `json:"content"`
	ConversationID string `json:"conversationId"`
}

// validate checks presence and length only. Content is stored verbatim, so no
// trimming happens here; whitespace-only content is legal input.
func (r sendMessageRequest) validate() []FieldError {
	var errs []FieldError
	if r.Content == "" {
		errs = append(errs, FieldError{Field: "content", Message: "Message content is required"})
	}
	if utf8.RuneCountInString(r.Content) > maxMessageRunes {
		errs = append(errs, FieldError{Field: "content", Message: "Message must not exceed 1000 characters"})
	}
	return errs
}

type createRuleRequest struct {
	Keywords []string `json:"keywords"`
	Response string   `json:"response"`
	Priority *int     `json:"priority"`
}

func (r createRuleRequest) validate() []FieldError {
	var errs []FieldError
	if countNonEmpty(r.Keywords) == 0 {
		errs = append(errs, FieldError{Field: "keywords", Message: "At least one keyword is required"})
	}
	if strings.TrimSpace(r.Response) == "" {
		errs = append(errs, FieldError{Field: "response", Message: "Response text is required"})
	}
	if r.Priority != nil && *r.Priority < 0 {
		errs = append(errs, FieldError{Field: "priority", Message: "Priority must not be negative"})
	}
	return errs
}

func (r createRuleRequest) priority() int {
	if r.Priority == nil {
		return 0
	}
	return *r.Priority
}

type updateRuleRequest struct {
	Keywords *[]string `json:"keywords"`
	Response *string   `json:"response"`
	Priority *int      `json:"priority"`
	IsActive *bool     `json:"isActive"`
}

func (r updateRuleRequest) validate() []FieldError {
	var errs []FieldError
	if r.Keywords != nil && countNonEmpty(*r.Keywords) == 0 {
		errs = append(errs, FieldError{Field: "keywords", Message: "At least one keyword is required"})
	}
	if r.Response != nil && strings.TrimSpace(*r.Response) == "" {
		errs = append(errs, FieldError{Field: "response", Message: "Response text is required"})
	}
	if r.Priority != nil && *r.Priority < 0 {
		errs = append(errs, FieldError{Field: "priority", Message: "Priority must not be negative"})
	}
	return errs
}

func countNonEmpty(values []string) int {
	count := 0
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			count++
		}
	}
	return count
}
