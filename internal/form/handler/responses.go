package handler

import (
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/pipeline"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/validation"
)

// FailureResponse is one failed validation rule.
type FailureResponse struct {
	Type    validation.Type `json:"type"`
	Message string          `json:"message"`
}

// ValidateAnswerResponse reports every failing rule of a dry-run validation.
type ValidateAnswerResponse struct {
	Valid    bool              `json:"valid"`
	Message  string            `json:"message,omitempty"`
	Failures []FailureResponse `json:"failures"`
}

func fromOutcome(o pipeline.Outcome) ValidateAnswerResponse {
	resp := ValidateAnswerResponse{
		Valid:    o.Valid(),
		Message:  o.FirstMessage(),
		Failures: make([]FailureResponse, 0, len(o.Failures)),
	}
	for _, f := range o.Failures {
		resp.Failures = append(resp.Failures, FailureResponse{Type: f.Type, Message: f.Message})
	}
	return resp
}
