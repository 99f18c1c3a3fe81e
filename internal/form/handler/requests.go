package handler

import (
	"strings"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/intake"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/service"
	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
)

const (
	maxNameLength      = 255
	maxStatementLength = 2000
	maxOptions         = 200
	maxValidations     = 27
	maxAnswerLength    = 10000
)

// CreateFormRequest is the body of POST /admin/forms.
type CreateFormRequest struct {
	ProcessID string `json:"process_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`

	parsedProcessID id.ProcessID
}

func (r *CreateFormRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Name) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 255 characters")
	}
	processID, err := id.ParseProcessID(strings.TrimSpace(r.ProcessID))
	if err != nil {
		return err
	}
	r.parsedProcessID = processID
	r.Type = strings.TrimSpace(r.Type)
	if r.Type == "" {
		return dErrors.New(dErrors.CodeValidation, "type is required")
	}
	return nil
}

func (r *CreateFormRequest) toService() service.CreateFormRequest {
	return service.CreateFormRequest{
		ProcessID: r.parsedProcessID,
		Name:      r.Name,
		Type:      models.FormType(r.Type),
	}
}

// UpdateFormRequest is the body of PUT /admin/forms/{formID}.
type UpdateFormRequest struct {
	Name            string         `json:"name"`
	Type            string         `json:"type"`
	EmailQuestionID *id.QuestionID `json:"email_question_id"`
}

func (r *UpdateFormRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Name) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 255 characters")
	}
	if r.EmailQuestionID != nil && r.EmailQuestionID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "email_question_id cannot be nil")
	}
	return nil
}

func (r *UpdateFormRequest) toService() service.UpdateFormRequest {
	return service.UpdateFormRequest{
		Name:            r.Name,
		Type:            models.FormType(strings.TrimSpace(r.Type)),
		EmailQuestionID: r.EmailQuestionID,
	}
}

// gateOrDefault treats an omitted gate as ALWAYS_SHOW.
func gateOrDefault(g *models.Gate) models.Gate {
	if g == nil {
		return models.AlwaysShow()
	}
	return *g
}

// SectionRequest is the body of section create and update. Order is ignored
// on update.
type SectionRequest struct {
	Title string       `json:"title"`
	Order int          `json:"order"`
	Gate  *models.Gate `json:"gate"`
}

func (r *SectionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Title) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "title must be at most 255 characters")
	}
	return nil
}

// ContentRequest is the editable body of a question or sub-question.
type ContentRequest struct {
	Statement   string              `json:"statement"`
	Description string              `json:"description"`
	Type        string              `json:"type"`
	Options     []models.Option     `json:"options"`
	Validations []models.Validation `json:"validations"`
}

func (r *ContentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Statement) > maxStatementLength || len(r.Description) > maxStatementLength {
		return dErrors.New(dErrors.CodeValidation, "statement and description must be at most 2000 characters")
	}
	if len(r.Options) > maxOptions {
		return dErrors.New(dErrors.CodeValidation, "a question can have at most 200 options")
	}
	if len(r.Validations) > maxValidations {
		return dErrors.New(dErrors.CodeValidation, "a question can have at most 27 validations")
	}
	return nil
}

func (r *ContentRequest) content() models.QuestionContent {
	return models.QuestionContent{
		Statement:   r.Statement,
		Description: r.Description,
		Type:        models.QuestionType(strings.TrimSpace(r.Type)),
		Options:     r.Options,
		Validations: r.Validations,
	}
}

// QuestionRequest is the body of question create and update. Order is
// ignored on update.
type QuestionRequest struct {
	ContentRequest
	Order int          `json:"order"`
	Gate  *models.Gate `json:"gate"`
}

func (r *QuestionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return r.ContentRequest.Validate()
}

// SubQuestionRequest is the body of sub-question create and update.
type SubQuestionRequest struct {
	ContentRequest
	Position int `json:"position"`
}

func (r *SubQuestionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return r.ContentRequest.Validate()
}

// ReorderRequest lists the new order of every sibling.
type ReorderRequest[ID comparable] struct {
	Orders []models.OrderChange[ID] `json:"orders"`
}

func (r *ReorderRequest[ID]) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Orders) == 0 {
		return dErrors.New(dErrors.CodeValidation, "orders cannot be empty")
	}
	return nil
}

// RegisterCandidateRequest is the body of POST /admin/forms/{formID}/candidates.
type RegisterCandidateRequest struct {
	CandidateID string `json:"candidate_id"`

	parsedCandidateID id.CandidateID
}

func (r *RegisterCandidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	candidateID, err := id.ParseCandidateID(strings.TrimSpace(r.CandidateID))
	if err != nil {
		return err
	}
	r.parsedCandidateID = candidateID
	return nil
}

// ReviewRequest is the body of PUT /admin/answers/{answerID}/review.
type ReviewRequest struct {
	ValidAnswer *bool   `json:"valid_answer"`
	Comment     *string `json:"comment"`
}

func (r *ReviewRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.ValidAnswer == nil {
		return dErrors.New(dErrors.CodeValidation, "valid_answer is required")
	}
	if r.Comment != nil {
		trimmed := strings.TrimSpace(*r.Comment)
		if len(trimmed) > maxStatementLength {
			return dErrors.New(dErrors.CodeValidation, "comment must be at most 2000 characters")
		}
		if trimmed == "" {
			r.Comment = nil
		} else {
			r.Comment = &trimmed
		}
	}
	return nil
}

func (r *ReviewRequest) toService() intake.ReviewRequest {
	return intake.ReviewRequest{Valid: *r.ValidAnswer, Comment: r.Comment}
}

// SubmitAnswerRequest is the body of POST /form-candidates/{fcID}/answers.
type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id"`
	Value      string `json:"value"`

	parsedQuestionID id.QuestionID
}

func (r *SubmitAnswerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Value) > maxAnswerLength {
		return dErrors.New(dErrors.CodeValidation, "value must be at most 10000 characters")
	}
	questionID, err := id.ParseQuestionID(strings.TrimSpace(r.QuestionID))
	if err != nil {
		return err
	}
	r.parsedQuestionID = questionID
	return nil
}

// ValidateAnswerRequest is the body of POST /questions/{questionID}/validate.
type ValidateAnswerRequest struct {
	Value           string  `json:"value"`
	FormCandidateID *string `json:"form_candidate_id"`

	parsedFormCandidateID *id.FormCandidateID
}

func (r *ValidateAnswerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Value) > maxAnswerLength {
		return dErrors.New(dErrors.CodeValidation, "value must be at most 10000 characters")
	}
	if r.FormCandidateID != nil {
		fcID, err := id.ParseFormCandidateID(strings.TrimSpace(*r.FormCandidateID))
		if err != nil {
			return err
		}
		r.parsedFormCandidateID = &fcID
	}
	return nil
}
