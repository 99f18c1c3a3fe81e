// Package handler exposes the form engine over HTTP: structural editing for
// administrators and answer intake for candidates.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/intake"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/pipeline"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/service"
	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/httputil"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks StructureService,IntakeService,AuditLog

// StructureService edits forms, sections, questions and sub-questions.
type StructureService interface {
	CreateForm(ctx context.Context, req service.CreateFormRequest) (*models.Form, error)
	UpdateForm(ctx context.Context, formID id.FormID, req service.UpdateFormRequest) (*models.Form, error)
	DeleteForm(ctx context.Context, formID id.FormID) error
	GetForm(ctx context.Context, formID id.FormID) (*models.Form, error)
	ListForms(ctx context.Context, processID id.ProcessID) ([]models.Form, error)
	GetFormStructure(ctx context.Context, formID id.FormID) (*service.Structure, error)

	CreateSection(ctx context.Context, formID id.FormID, req service.CreateSectionRequest) (*models.Section, error)
	UpdateSection(ctx context.Context, sectionID id.SectionID, req service.UpdateSectionRequest) (*models.Section, error)
	DeleteSection(ctx context.Context, sectionID id.SectionID) error
	ReorderSections(ctx context.Context, formID id.FormID, changes []models.OrderChange[id.SectionID]) error
	GetSection(ctx context.Context, sectionID id.SectionID) (*models.Section, error)

	CreateQuestion(ctx context.Context, sectionID id.SectionID, req service.CreateQuestionRequest) (*models.Question, error)
	UpdateQuestion(ctx context.Context, questionID id.QuestionID, req service.UpdateQuestionRequest) (*models.Question, error)
	DeleteQuestion(ctx context.Context, questionID id.QuestionID) error
	ReorderQuestions(ctx context.Context, sectionID id.SectionID, changes []models.OrderChange[id.QuestionID]) error
	GetQuestion(ctx context.Context, questionID id.QuestionID) (*models.Question, error)

	CreateSubQuestion(ctx context.Context, questionID id.QuestionID, req service.CreateSubQuestionRequest) (*models.SubQuestion, error)
	UpdateSubQuestion(ctx context.Context, subID id.SubQuestionID, content models.QuestionContent) (*models.SubQuestion, error)
	DeleteSubQuestion(ctx context.Context, subID id.SubQuestionID) error
	ReorderSubQuestions(ctx context.Context, questionID id.QuestionID, changes []models.OrderChange[id.SubQuestionID]) error
	ListSubQuestions(ctx context.Context, questionID id.QuestionID) ([]models.SubQuestion, error)
}

// IntakeService records and evaluates candidate answers.
type IntakeService interface {
	RegisterFormCandidate(ctx context.Context, formID id.FormID, candidateID id.CandidateID) (*models.FormCandidate, error)
	SubmitAnswer(ctx context.Context, req intake.SubmitAnswerRequest) (*intake.SubmitResult, error)
	ValidateAnswer(ctx context.Context, questionID id.QuestionID, value string, fcID *id.FormCandidateID) (pipeline.Outcome, error)
	FormVisibility(ctx context.Context, fcID id.FormCandidateID) (*intake.Visibility, error)
	ReviewAnswer(ctx context.Context, answerID uuid.UUID, req intake.ReviewRequest) (*models.Answer, error)
	ListAnswers(ctx context.Context, fcID id.FormCandidateID) ([]models.Answer, error)
}

// AuditLog reads a form's audit trail.
type AuditLog interface {
	ListByForm(ctx context.Context, formID id.FormID, limit int) ([]audit.Event, error)
}

// Handler wires form endpoints to the structure and intake services.
type Handler struct {
	structure StructureService
	intake    IntakeService
	audit     AuditLog
	logger    *slog.Logger
}

type Option func(*Handler)

// WithAuditLog exposes GET /forms/{formID}/audit.
func WithAuditLog(a AuditLog) Option {
	return func(h *Handler) { h.audit = a }
}

func New(structure StructureService, intake IntakeService, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		structure: structure,
		intake:    intake,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterAdmin mounts the structural routes. The caller guards them.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/forms", h.HandleCreateForm)
	r.Get("/processes/{processID}/forms", h.HandleListForms)
	r.Get("/forms/{formID}", h.HandleGetForm)
	r.Get("/forms/{formID}/structure", h.HandleGetStructure)
	r.Put("/forms/{formID}", h.HandleUpdateForm)
	r.Delete("/forms/{formID}", h.HandleDeleteForm)
	r.Post("/forms/{formID}/candidates", h.HandleRegisterCandidate)
	if h.audit != nil {
		r.Get("/forms/{formID}/audit", h.HandleListAudit)
	}

	r.Post("/forms/{formID}/sections", h.HandleCreateSection)
	r.Put("/forms/{formID}/sections/order", h.HandleReorderSections)
	r.Get("/sections/{sectionID}", h.HandleGetSection)
	r.Put("/sections/{sectionID}", h.HandleUpdateSection)
	r.Delete("/sections/{sectionID}", h.HandleDeleteSection)

	r.Post("/sections/{sectionID}/questions", h.HandleCreateQuestion)
	r.Put("/sections/{sectionID}/questions/order", h.HandleReorderQuestions)
	r.Get("/questions/{questionID}", h.HandleGetQuestion)
	r.Put("/questions/{questionID}", h.HandleUpdateQuestion)
	r.Delete("/questions/{questionID}", h.HandleDeleteQuestion)

	r.Get("/questions/{questionID}/sub-questions", h.HandleListSubQuestions)
	r.Post("/questions/{questionID}/sub-questions", h.HandleCreateSubQuestion)
	r.Put("/questions/{questionID}/sub-questions/order", h.HandleReorderSubQuestions)
	r.Put("/sub-questions/{subQuestionID}", h.HandleUpdateSubQuestion)
	r.Delete("/sub-questions/{subQuestionID}", h.HandleDeleteSubQuestion)

	r.Get("/form-candidates/{formCandidateID}/answers", h.HandleListAnswers)
	r.Put("/answers/{answerID}/review", h.HandleReviewAnswer)
}

// RegisterPublic mounts the candidate-facing routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/form-candidates/{formCandidateID}/answers", h.HandleSubmitAnswer)
	r.Get("/form-candidates/{formCandidateID}/visibility", h.HandleVisibility)
	r.Post("/questions/{questionID}/validate", h.HandleValidateAnswer)
}

// pathID parses a path parameter, writing a 400 on failure.
func pathID[T any](w http.ResponseWriter, r *http.Request, name string, parse func(string) (T, error)) (T, bool) {
	v, err := parse(chi.URLParam(r, name))
	if err != nil {
		httputil.WriteError(w, err)
		var zero T
		return zero, false
	}
	return v, true
}

// fail logs and writes a service error. Client errors are warnings; only
// internal failures are logged as errors.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	attrs = append([]any{"request_id", requestcontext.RequestID(ctx), "error", err}, attrs...)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

// =============================================================================
// Forms
// =============================================================================

func (h *Handler) HandleCreateForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateFormRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	form, err := h.structure.CreateForm(ctx, req.toService())
	if err != nil {
		h.fail(ctx, w, "create form failed", err, "process_id", req.ProcessID)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, form)
}

func (h *Handler) HandleListForms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	processID, ok := pathID(w, r, "processID", id.ParseProcessID)
	if !ok {
		return
	}
	forms, err := h.structure.ListForms(ctx, processID)
	if err != nil {
		h.fail(ctx, w, "list forms failed", err, "process_id", processID)
		return
	}
	if forms == nil {
		forms = []models.Form{}
	}
	httputil.WriteJSON(w, http.StatusOK, forms)
}

func (h *Handler) HandleGetForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	formID, ok := pathID(w, r, "formID", id.ParseFormID)
	if !ok {
		return
	}
	form, err := h.structure.GetForm(ctx, formID)
	if err != nil {
		h.fail(ctx, w, "get form failed", err, "form_id", formID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, form)
}

func (h *Handler) HandleGetStructure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	formID, ok := pathID(w, r, "formID", id.ParseFormID)
	if !ok {
		return
	}
	structure, err := h.structure.GetFormStructure(ctx, formID)
	if err != nil {
		h.fail(ctx, w, "get form structure failed", err, "form_id", formID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, structure)
}

func (h *Handler) HandleUpdateForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	formID, ok := pathID(w, r, "formID", id.ParseFormID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateFormRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	form, err := h.structure.UpdateForm(ctx, formID, req.toService())
	if err != nil {
		h.fail(ctx, w, "update form failed", err, "form_id", formID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, form)
}

func (h *Handler) HandleDeleteForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	formID, ok := pathID(w, r, "formID", id.ParseFormID)
	if !ok {
		return
	}
	if err := h.structure.DeleteForm(ctx, formID); err != nil {
		h.fail(ctx, w, "delete form failed", err, "form_id", formID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleRegisterCandidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	formID, ok := pathID(w, r, "formID", id.ParseFormID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RegisterCandidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	fc, err := h.intake.RegisterFormCandidate(ctx, formID, req.parsedCandidateID)
	if err != nil {
		h.fail(ctx, w, "register form candidate failed", err, "form_id", formID)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fc)
}

// =============================================================================
// Sections
// =============================================================================

func (h *Handler) HandleCreateSection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	formID, ok := pathID(w, r, "formID", id.ParseFormID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SectionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	section, err := h.structure.CreateSection(ctx, formID, service.CreateSectionRequest{
		Title: req.Title,
		Order: req.Order,
		Gate:  gateOrDefault(req.Gate),
	})
	if err != nil {
		h.fail(ctx, w, "create section failed", err, "form_id", formID)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, section)
}

func (h *Handler) HandleReorderSections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	formID, ok := pathID(w, r, "formID", id.ParseFormID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReorderRequest[id.SectionID]](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.structure.ReorderSections(ctx, formID, req.Orders); err != nil {
		h.fail(ctx, w, "reorder sections failed", err, "form_id", formID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGetSection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sectionID, ok := pathID(w, r, "sectionID", id.ParseSectionID)
	if !ok {
		return
	}
	section, err := h.structure.GetSection(ctx, sectionID)
	if err != nil {
		h.fail(ctx, w, "get section failed", err, "section_id", sectionID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, section)
}

func (h *Handler) HandleUpdateSection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	sectionID, ok := pathID(w, r, "sectionID", id.ParseSectionID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SectionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	section, err := h.structure.UpdateSection(ctx, sectionID, service.UpdateSectionRequest{
		Title: req.Title,
		Gate:  gateOrDefault(req.Gate),
	})
	if err != nil {
		h.fail(ctx, w, "update section failed", err, "section_id", sectionID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, section)
}

func (h *Handler) HandleDeleteSection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sectionID, ok := pathID(w, r, "sectionID", id.ParseSectionID)
	if !ok {
		return
	}
	if err := h.structure.DeleteSection(ctx, sectionID); err != nil {
		h.fail(ctx, w, "delete section failed", err, "section_id", sectionID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Questions
// =============================================================================

func (h *Handler) HandleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	sectionID, ok := pathID(w, r, "sectionID", id.ParseSectionID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[QuestionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	question, err := h.structure.CreateQuestion(ctx, sectionID, service.CreateQuestionRequest{
		Order:   req.Order,
		Content: req.content(),
		Gate:    gateOrDefault(req.Gate),
	})
	if err != nil {
		h.fail(ctx, w, "create question failed", err, "section_id", sectionID)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, question)
}

func (h *Handler) HandleReorderQuestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	sectionID, ok := pathID(w, r, "sectionID", id.ParseSectionID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReorderRequest[id.QuestionID]](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.structure.ReorderQuestions(ctx, sectionID, req.Orders); err != nil {
		h.fail(ctx, w, "reorder questions failed", err, "section_id", sectionID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGetQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	questionID, ok := pathID(w, r, "questionID", id.ParseQuestionID)
	if !ok {
		return
	}
	question, err := h.structure.GetQuestion(ctx, questionID)
	if err != nil {
		h.fail(ctx, w, "get question failed", err, "question_id", questionID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, question)
}

func (h *Handler) HandleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	questionID, ok := pathID(w, r, "questionID", id.ParseQuestionID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[QuestionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	question, err := h.structure.UpdateQuestion(ctx, questionID, service.UpdateQuestionRequest{
		Content: req.content(),
		Gate:    gateOrDefault(req.Gate),
	})
	if err != nil {
		h.fail(ctx, w, "update question failed", err, "question_id", questionID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, question)
}

func (h *Handler) HandleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	questionID, ok := pathID(w, r, "questionID", id.ParseQuestionID)
	if !ok {
		return
	}
	if err := h.structure.DeleteQuestion(ctx, questionID); err != nil {
		h.fail(ctx, w, "delete question failed", err, "question_id", questionID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Sub-questions
// =============================================================================

func (h *Handler) HandleListSubQuestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	questionID, ok := pathID(w, r, "questionID", id.ParseQuestionID)
	if !ok {
		return
	}
	subs, err := h.structure.ListSubQuestions(ctx, questionID)
	if err != nil {
		h.fail(ctx, w, "list sub-questions failed", err, "question_id", questionID)
		return
	}
	if subs == nil {
		subs = []models.SubQuestion{}
	}
	httputil.WriteJSON(w, http.StatusOK, subs)
}

func (h *Handler) HandleCreateSubQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	questionID, ok := pathID(w, r, "questionID", id.ParseQuestionID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SubQuestionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	sub, err := h.structure.CreateSubQuestion(ctx, questionID, service.CreateSubQuestionRequest{
		Position: req.Position,
		Content:  req.content(),
	})
	if err != nil {
		h.fail(ctx, w, "create sub-question failed", err, "question_id", questionID)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, sub)
}

func (h *Handler) HandleReorderSubQuestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	questionID, ok := pathID(w, r, "questionID", id.ParseQuestionID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReorderRequest[id.SubQuestionID]](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.structure.ReorderSubQuestions(ctx, questionID, req.Orders); err != nil {
		h.fail(ctx, w, "reorder sub-questions failed", err, "question_id", questionID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleUpdateSubQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	subID, ok := pathID(w, r, "subQuestionID", id.ParseSubQuestionID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SubQuestionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	sub, err := h.structure.UpdateSubQuestion(ctx, subID, req.content())
	if err != nil {
		h.fail(ctx, w, "update sub-question failed", err, "sub_question_id", subID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sub)
}

func (h *Handler) HandleDeleteSubQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subID, ok := pathID(w, r, "subQuestionID", id.ParseSubQuestionID)
	if !ok {
		return
	}
	if err := h.structure.DeleteSubQuestion(ctx, subID); err != nil {
		h.fail(ctx, w, "delete sub-question failed", err, "sub_question_id", subID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Answers
// =============================================================================

func (h *Handler) HandleListAnswers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fcID, ok := pathID(w, r, "formCandidateID", id.ParseFormCandidateID)
	if !ok {
		return
	}
	answers, err := h.intake.ListAnswers(ctx, fcID)
	if err != nil {
		h.fail(ctx, w, "list answers failed", err, "form_candidate_id", fcID)
		return
	}
	if answers == nil {
		answers = []models.Answer{}
	}
	httputil.WriteJSON(w, http.StatusOK, answers)
}

func (h *Handler) HandleReviewAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	answerID, ok := pathID(w, r, "answerID", parseAnswerID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	answer, err := h.intake.ReviewAnswer(ctx, answerID, req.toService())
	if err != nil {
		h.fail(ctx, w, "review answer failed", err, "answer_id", answerID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, answer)
}

func parseAnswerID(s string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil || parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid answer id")
	}
	return parsed, nil
}

func (h *Handler) HandleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	fcID, ok := pathID(w, r, "formCandidateID", id.ParseFormCandidateID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SubmitAnswerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.intake.SubmitAnswer(ctx, intake.SubmitAnswerRequest{
		FormCandidateID: fcID,
		QuestionID:      req.parsedQuestionID,
		Value:           req.Value,
	})
	if err != nil {
		h.fail(ctx, w, "submit answer failed", err,
			"form_candidate_id", fcID,
			"question_id", req.parsedQuestionID,
		)
		return
	}

	h.logger.InfoContext(ctx, "answer submitted",
		"request_id", requestID,
		"form_candidate_id", fcID,
		"question_id", req.parsedQuestionID,
		"dependents", len(result.Dependents),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleVisibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fcID, ok := pathID(w, r, "formCandidateID", id.ParseFormCandidateID)
	if !ok {
		return
	}
	visibility, err := h.intake.FormVisibility(ctx, fcID)
	if err != nil {
		h.fail(ctx, w, "form visibility failed", err, "form_candidate_id", fcID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, visibility)
}

func (h *Handler) HandleValidateAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	questionID, ok := pathID(w, r, "questionID", id.ParseQuestionID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ValidateAnswerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	outcome, err := h.intake.ValidateAnswer(ctx, questionID, req.Value, req.parsedFormCandidateID)
	if err != nil {
		h.fail(ctx, w, "validate answer failed", err, "question_id", questionID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromOutcome(outcome))
}

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 500
)

func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	formID, ok := pathID(w, r, "formID", id.ParseFormID)
	if !ok {
		return
	}
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxAuditLimit {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	events, err := h.audit.ListByForm(ctx, formID, limit)
	if err != nil {
		h.fail(ctx, w, "list audit events failed", dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit trail"), "form_id", formID)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}
