// Package intake records candidate answers: it checks the question is shown,
// runs the validation pipeline, stores the answer and reports how the answer
// changed the visibility of dependent sections and questions.
package intake

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/display"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/metrics"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/pipeline"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/attrs"
	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/sentinel"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/requestcontext"
)

// Store is what answer intake reads and writes.
type Store interface {
	display.LinkReader

	FindForm(ctx context.Context, formID id.FormID) (*models.Form, error)
	LockForm(ctx context.Context, formID id.FormID) (*models.Form, error)
	ListSections(ctx context.Context, formID id.FormID) ([]models.Section, error)
	FindSection(ctx context.Context, sectionID id.SectionID) (*models.Section, error)
	ListFormQuestions(ctx context.Context, formID id.FormID) ([]models.Question, error)
	FindQuestion(ctx context.Context, questionID id.QuestionID) (*models.Question, error)

	CreateFormCandidate(ctx context.Context, fc *models.FormCandidate) error
	FindFormCandidate(ctx context.Context, fcID id.FormCandidateID) (*models.FormCandidate, error)
	FindAnswer(ctx context.Context, questionID id.QuestionID, fcID id.FormCandidateID) (*models.Answer, error)
	FindAnswerByID(ctx context.Context, answerID uuid.UUID) (*models.Answer, error)
	ListAnswers(ctx context.Context, fcID id.FormCandidateID) ([]models.Answer, error)
	UpsertAnswer(ctx context.Context, answer *models.Answer) error
	ReviewAnswer(ctx context.Context, answerID uuid.UUID, valid bool, comment *string, now time.Time) error
	// CandidateEmails lists the emails a candidate answered in other
	// submissions of the same process.
	CandidateEmails(ctx context.Context, candidateID id.CandidateID, processID id.ProcessID, exclude id.FormCandidateID) ([]string, error)
}

// StoreTx runs fn in one transaction.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(store Store) error) error
}

// FrozenMarker records that a form now has answers.
type FrozenMarker interface {
	MarkFrozen(ctx context.Context, formID id.FormID) error
}

// Auditor receives a record of registrations, stored answers and reviews.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event)
}

type Service struct {
	store    Store
	tx       StoreTx
	pipeline *pipeline.Pipeline
	resolver *display.Resolver
	frozen   FrozenMarker
	auditor  Auditor
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithFrozenMarker(f FrozenMarker) Option {
	return func(s *Service) { s.frozen = f }
}

func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

func New(store Store, tx StoreTx, p *pipeline.Pipeline, opts ...Option) *Service {
	s := &Service{
		store:    store,
		tx:       tx,
		pipeline: p,
		resolver: display.NewResolver(store),
		tracer:   otel.Tracer("form"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterFormCandidate opens a candidate's submission of a form.
func (s *Service) RegisterFormCandidate(ctx context.Context, formID id.FormID, candidateID id.CandidateID) (*models.FormCandidate, error) {
	form, err := s.store.FindForm(ctx, formID)
	if err != nil {
		return nil, translate(err, "form")
	}
	fc := &models.FormCandidate{
		ID:          id.FormCandidateID(uuid.New()),
		FormID:      form.ID,
		CandidateID: candidateID,
		ProcessID:   form.ProcessID,
	}
	if err := s.store.CreateFormCandidate(ctx, fc); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "candidate already has a submission for this form")
		}
		return nil, translate(err, "form candidate")
	}

	s.logInfo(ctx, audit.ActionCandidateRegistered,
		"form_id", formID,
		"form_candidate_id", fc.ID,
	)
	return fc, nil
}

type ReviewRequest struct {
	Valid   bool
	Comment *string
}

// ReviewAnswer lets a reviewer overrule the recorded validity of an answer
// and leave a comment.
func (s *Service) ReviewAnswer(ctx context.Context, answerID uuid.UUID, req ReviewRequest) (*models.Answer, error) {
	if err := s.store.ReviewAnswer(ctx, answerID, req.Valid, req.Comment, requestcontext.Now(ctx)); err != nil {
		return nil, translate(err, "answer")
	}
	answer, err := s.store.FindAnswerByID(ctx, answerID)
	if err != nil {
		return nil, translate(err, "answer")
	}
	fc, err := s.store.FindFormCandidate(ctx, answer.FormCandidateID)
	if err != nil {
		return nil, translate(err, "form candidate")
	}

	s.logInfo(ctx, audit.ActionAnswerReviewed,
		"form_id", fc.FormID,
		"answer_id", answerID,
		"valid", req.Valid,
	)
	return answer, nil
}

func (s *Service) ListAnswers(ctx context.Context, fcID id.FormCandidateID) ([]models.Answer, error) {
	if _, err := s.store.FindFormCandidate(ctx, fcID); err != nil {
		return nil, translate(err, "form candidate")
	}
	answers, err := s.store.ListAnswers(ctx, fcID)
	if err != nil {
		return nil, translate(err, "answer")
	}
	return answers, nil
}

func translate(err error, entity string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, entity+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, entity+" already exists")
	default:
		var de *dErrors.Error
		if errors.As(err, &de) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to access "+entity)
	}
}

// logInfo logs the event and forwards it to the auditor. kv must carry
// "form_id".
func (s *Service) logInfo(ctx context.Context, action audit.Action, kv ...any) {
	if s.logger != nil {
		args := append(kv, "request_id", requestcontext.RequestID(ctx))
		s.logger.InfoContext(ctx, string(action), args...)
	}
	if s.auditor == nil {
		return
	}
	formID, _ := attrs.Extract[id.FormID](kv, "form_id")
	s.auditor.Emit(ctx, audit.Event{
		Action: action,
		FormID: formID,
		Detail: attrs.Strings(kv, "form_id"),
	})
}
