package intake

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/display"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/sentinel"
)

// Visibility is the shown/hidden state of every section and question of one
// submission, computed from the answers recorded so far.
type Visibility struct {
	Sections  map[uuid.UUID]bool `json:"sections"`
	Questions map[uuid.UUID]bool `json:"questions"`
}

// FormVisibility evaluates every gate of the submission's form. A question
// inside a hidden section is hidden.
func (s *Service) FormVisibility(ctx context.Context, fcID id.FormCandidateID) (*Visibility, error) {
	fc, err := s.store.FindFormCandidate(ctx, fcID)
	if err != nil {
		return nil, translate(err, "form candidate")
	}

	var (
		sections  []models.Section
		questions []models.Question
		answers   []models.Answer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sections, err = s.store.ListSections(gctx, fc.FormID)
		return err
	})
	g.Go(func() error {
		var err error
		questions, err = s.store.ListFormQuestions(gctx, fc.FormID)
		return err
	})
	g.Go(func() error {
		var err error
		answers, err = s.store.ListAnswers(gctx, fc.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, translate(err, "form")
	}

	recorded := make(map[id.QuestionID]string, len(answers))
	for _, a := range answers {
		recorded[a.QuestionID] = a.Value
	}

	out := &Visibility{
		Sections:  make(map[uuid.UUID]bool, len(sections)),
		Questions: make(map[uuid.UUID]bool, len(questions)),
	}
	for _, sec := range sections {
		out.Sections[uuid.UUID(sec.ID)] = s.evaluate(ctx, sec.Gate, recorded)
	}
	for _, q := range questions {
		out.Questions[uuid.UUID(q.ID)] = out.Sections[uuid.UUID(q.SectionID)] && s.evaluate(ctx, q.Gate, recorded)
	}
	return out, nil
}

// evaluate applies a gate to the recorded answers. An unanswered source
// question reads as the empty answer.
func (s *Service) evaluate(ctx context.Context, gate models.Gate, recorded map[id.QuestionID]string) bool {
	if !gate.Rule.IsGated() {
		return true
	}
	return s.gateVisible(ctx, gate, recorded[*gate.LinkQuestionID])
}

// gateVisible is display.GateVisible with the numeric failure folded in: a
// non-numeric answer cannot meet a numeric condition.
func (s *Service) gateVisible(ctx context.Context, gate models.Gate, answer string) bool {
	visible, err := display.GateVisible(answer, gate)
	if err == nil {
		return visible
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "display condition could not be evaluated",
			"display_rule", gate.Rule,
			"error", err,
		)
	}
	if errors.Is(err, display.ErrNonNumeric) {
		return gate.Rule == models.DisplayDontShowIf
	}
	return false
}

// questionVisible checks the question's section gate and its own gate
// against the submission's recorded answers.
func (s *Service) questionVisible(ctx context.Context, q *models.Question, fcID id.FormCandidateID) (bool, error) {
	section, err := s.store.FindSection(ctx, q.SectionID)
	if err != nil {
		return false, translate(err, "section")
	}
	for _, gate := range []models.Gate{section.Gate, q.Gate} {
		if !gate.Rule.IsGated() {
			continue
		}
		answer, err := s.recordedAnswer(ctx, *gate.LinkQuestionID, fcID)
		if err != nil {
			return false, err
		}
		if !s.gateVisible(ctx, gate, answer) {
			return false, nil
		}
	}
	return true, nil
}

func (s *Service) recordedAnswer(ctx context.Context, qid id.QuestionID, fcID id.FormCandidateID) (string, error) {
	a, err := s.store.FindAnswer(ctx, qid, fcID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", translate(err, "answer")
	}
	return a.Value, nil
}
