package intake

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/display"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/pipeline"
	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/requestcontext"
)

type SubmitAnswerRequest struct {
	FormCandidateID id.FormCandidateID
	QuestionID      id.QuestionID
	Value           string
}

// DependentState is a direct dependent of the answered question with its
// visibility under the new answer.
type DependentState struct {
	display.Dependent
	Visible bool `json:"visible"`
}

type SubmitResult struct {
	Answer     *models.Answer   `json:"answer"`
	Dependents []DependentState `json:"dependents"`
}

// SubmitAnswer validates and stores one answer. Rejected answers are not
// stored; the error carries the first failing rule's message.
func (s *Service) SubmitAnswer(ctx context.Context, req SubmitAnswerRequest) (*SubmitResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "intake.SubmitAnswer", trace.WithAttributes(
		attribute.String("question_id", req.QuestionID.String()),
		attribute.String("form_candidate_id", req.FormCandidateID.String()),
	))
	defer span.End()

	fc, question, err := s.load(ctx, req.FormCandidateID, req.QuestionID)
	if err != nil {
		return nil, err
	}

	var (
		visible bool
		prior   []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		visible, err = s.questionVisible(gctx, question, fc.ID)
		return err
	})
	if s.needsPriorEmails(question) {
		g.Go(func() error {
			var err error
			prior, err = s.store.CandidateEmails(gctx, fc.CandidateID, fc.ProcessID, fc.ID)
			if err != nil {
				return translate(err, "answer")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !visible {
		return nil, dErrors.New(dErrors.CodeValidation, "question is not displayed for this submission")
	}

	now := requestcontext.Now(ctx)
	outcome, err := s.pipeline.Run(pipeline.Input{
		Value:        req.Value,
		QuestionType: question.Type,
		Validations:  question.Validations,
		PriorEmails:  prior,
		Now:          now,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation configuration error")
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "validation configuration error",
				"question_id", question.ID,
				"error", err,
			)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "validation configuration error")
	}
	if !outcome.Valid() {
		s.observeRejection(outcome, start)
		return nil, dErrors.New(dErrors.CodeValidation, outcome.FirstMessage())
	}

	answer := &models.Answer{
		ID:              uuid.New(),
		QuestionID:      question.ID,
		FormCandidateID: fc.ID,
		Value:           req.Value,
		ValidAnswer:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err = s.tx.RunInTx(ctx, func(st Store) error {
		if _, err := st.LockForm(ctx, fc.FormID); err != nil {
			return translate(err, "form")
		}
		if err := st.UpsertAnswer(ctx, answer); err != nil {
			return translate(err, "answer")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "answer not stored")
		return nil, err
	}
	s.markFrozen(ctx, fc.FormID)

	dependents, err := s.resolver.FindDependents(ctx, question.ID)
	if err != nil {
		return nil, translate(err, "dependents")
	}
	states := make([]DependentState, len(dependents))
	for i, d := range dependents {
		states[i] = DependentState{Dependent: d, Visible: s.dependentVisible(ctx, d, req.Value)}
	}

	if s.metrics != nil {
		s.metrics.ObserveSubmission(true, start)
	}
	s.logInfo(ctx, audit.ActionAnswerSubmitted,
		"form_id", fc.FormID,
		"question_id", question.ID,
		"form_candidate_id", fc.ID,
		"value_digest", digest(req.Value),
		"dependents", len(states),
	)
	return &SubmitResult{Answer: answer, Dependents: states}, nil
}

// ValidateAnswer runs the pipeline without storing anything. fcID is optional;
// without it the email uniqueness rule sees no prior emails.
func (s *Service) ValidateAnswer(ctx context.Context, questionID id.QuestionID, value string, fcID *id.FormCandidateID) (pipeline.Outcome, error) {
	question, err := s.store.FindQuestion(ctx, questionID)
	if err != nil {
		return pipeline.Outcome{}, translate(err, "question")
	}

	var prior []string
	if fcID != nil && s.needsPriorEmails(question) {
		fc, err := s.store.FindFormCandidate(ctx, *fcID)
		if err != nil {
			return pipeline.Outcome{}, translate(err, "form candidate")
		}
		prior, err = s.store.CandidateEmails(ctx, fc.CandidateID, fc.ProcessID, fc.ID)
		if err != nil {
			return pipeline.Outcome{}, translate(err, "answer")
		}
	}

	outcome, err := s.pipeline.Run(pipeline.Input{
		Value:        value,
		QuestionType: question.Type,
		Validations:  question.Validations,
		PriorEmails:  prior,
		Now:          requestcontext.Now(ctx),
	})
	if err != nil {
		return pipeline.Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "validation configuration error")
	}
	return outcome, nil
}

func (s *Service) load(ctx context.Context, fcID id.FormCandidateID, qid id.QuestionID) (*models.FormCandidate, *models.Question, error) {
	var (
		fc       *models.FormCandidate
		question *models.Question
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fc, err = s.store.FindFormCandidate(gctx, fcID)
		if err != nil {
			return translate(err, "form candidate")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		question, err = s.store.FindQuestion(gctx, qid)
		if err != nil {
			return translate(err, "question")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if question.FormID != fc.FormID {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "question does not belong to this form")
	}
	return fc, question, nil
}

func (s *Service) needsPriorEmails(q *models.Question) bool {
	for _, v := range s.pipeline.Applicable(q.Type, q.Validations) {
		if spec, ok := s.pipeline.Registry().Lookup(v.Type); ok && spec.Injects() {
			return true
		}
	}
	return false
}

func (s *Service) dependentVisible(ctx context.Context, d display.Dependent, answer string) bool {
	visible, err := d.Visible(answer)
	if err == nil {
		return visible
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "display condition could not be evaluated",
			"target_id", d.TargetID,
			"error", err,
		)
	}
	if errors.Is(err, display.ErrNonNumeric) {
		return d.StructuralRule == models.DisplayDontShowIf
	}
	return false
}

func (s *Service) markFrozen(ctx context.Context, formID id.FormID) {
	if s.frozen == nil {
		return
	}
	if err := s.frozen.MarkFrozen(ctx, formID); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "frozen cache update failed",
			"form_id", formID,
			"error", err,
		)
	}
}

func (s *Service) observeRejection(outcome pipeline.Outcome, start time.Time) {
	if s.metrics == nil {
		return
	}
	for _, f := range outcome.Failures {
		s.metrics.IncrementRejection(int(f.Type))
	}
	s.metrics.ObserveSubmission(false, start)
}

// digest fingerprints an answer for the audit trail without recording the
// candidate's value.
func digest(value string) string {
	sum := blake2b.Sum256([]byte(strings.TrimSpace(value)))
	return hex.EncodeToString(sum[:16])
}
