// Package store persists form structures and answers, in memory or in
// PostgreSQL, and caches frozen forms in Redis.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/sentinel"
)

type answerKey struct {
	question      id.QuestionID
	formCandidate id.FormCandidateID
}

type state struct {
	forms      map[id.FormID]models.Form
	sections   map[id.SectionID]models.Section
	questions  map[id.QuestionID]models.Question
	subs       map[id.SubQuestionID]models.SubQuestion
	candidates map[id.FormCandidateID]models.FormCandidate
	answers    map[answerKey]models.Answer
}

func newState() state {
	return state{
		forms:      make(map[id.FormID]models.Form),
		sections:   make(map[id.SectionID]models.Section),
		questions:  make(map[id.QuestionID]models.Question),
		subs:       make(map[id.SubQuestionID]models.SubQuestion),
		candidates: make(map[id.FormCandidateID]models.FormCandidate),
		answers:    make(map[answerKey]models.Answer),
	}
}

// clone copies the maps. Stored values are replaced on write, never mutated,
// so copying the maps is enough.
func (st state) clone() state {
	c := newState()
	for k, v := range st.forms {
		c.forms[k] = v
	}
	for k, v := range st.sections {
		c.sections[k] = v
	}
	for k, v := range st.questions {
		c.questions[k] = v
	}
	for k, v := range st.subs {
		c.subs[k] = v
	}
	for k, v := range st.candidates {
		c.candidates[k] = v
	}
	for k, v := range st.answers {
		c.answers[k] = v
	}
	return c
}

// InMemoryStore keeps everything in maps. Writes are serialised with
// transactions: a write made outside Atomically waits for the running
// transaction, so a rollback only ever undoes that transaction's own writes.
type InMemoryStore struct {
	txMu *sync.Mutex
	mu   *sync.RWMutex
	data *state
	// inTx marks the view handed to an Atomically callback. It already holds
	// txMu.
	inTx bool
}

func NewInMemoryStore() *InMemoryStore {
	st := newState()
	return &InMemoryStore{txMu: &sync.Mutex{}, mu: &sync.RWMutex{}, data: &st}
}

// Atomically runs fn alone among writers, handing it a view of the store
// bound to the transaction. If fn fails, every write it made is undone. fn
// must write through tx; writing through s would wait on itself.
func (s *InMemoryStore) Atomically(ctx context.Context, fn func(tx *InMemoryStore) error) error {
	if s.inTx {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	saved := s.data.clone()
	s.mu.RUnlock()

	tx := &InMemoryStore{txMu: s.txMu, mu: s.mu, data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		s.mu.Lock()
		*s.data = saved
		s.mu.Unlock()
		return err
	}
	return nil
}

// exclusive waits for any running transaction before a standalone write.
func (s *InMemoryStore) exclusive() func() {
	if s.inTx {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

// Forms

func (s *InMemoryStore) CreateForm(_ context.Context, form *models.Form) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data.forms[form.ID]; exists {
		return sentinel.ErrConflict
	}
	if form.Type.IsSingleton() {
		for _, f := range s.data.forms {
			if f.ProcessID == form.ProcessID && f.Type == form.Type {
				return sentinel.ErrConflict
			}
		}
	}
	s.data.forms[form.ID] = *form
	return nil
}

func (s *InMemoryStore) UpdateForm(_ context.Context, form *models.Form) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.forms[form.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.data.forms[form.ID] = *form
	return nil
}

func (s *InMemoryStore) DeleteForm(_ context.Context, formID id.FormID) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.forms[formID]; !ok {
		return sentinel.ErrNotFound
	}
	for sid, sec := range s.data.sections {
		if sec.FormID == formID {
			s.deleteSectionLocked(sid)
		}
	}
	for fcid, fc := range s.data.candidates {
		if fc.FormID == formID {
			delete(s.data.candidates, fcid)
		}
	}
	delete(s.data.forms, formID)
	return nil
}

func (s *InMemoryStore) FindForm(_ context.Context, formID id.FormID) (*models.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.data.forms[formID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &f, nil
}

// LockForm is FindForm: Atomically already excludes concurrent transactions.
func (s *InMemoryStore) LockForm(ctx context.Context, formID id.FormID) (*models.Form, error) {
	return s.FindForm(ctx, formID)
}

func (s *InMemoryStore) ListFormsByProcess(_ context.Context, processID id.ProcessID) ([]models.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Form
	for _, f := range s.data.forms {
		if f.ProcessID == processID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *InMemoryStore) FormHasAnswers(_ context.Context, formID id.FormID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for key := range s.data.answers {
		if q, ok := s.data.questions[key.question]; ok && q.FormID == formID {
			return true, nil
		}
	}
	return false, nil
}

// Sections

func (s *InMemoryStore) ListSections(_ context.Context, formID id.FormID) ([]models.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.sectionsOfLocked(formID)
	return out, nil
}

func (s *InMemoryStore) sectionsOfLocked(formID id.FormID) []models.Section {
	var out []models.Section
	for _, sec := range s.data.sections {
		if sec.FormID == formID {
			out = append(out, sec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (s *InMemoryStore) FindSection(_ context.Context, sectionID id.SectionID) (*models.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sec, ok := s.data.sections[sectionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &sec, nil
}

func (s *InMemoryStore) InsertSection(_ context.Context, section *models.Section) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.forms[section.FormID]; !ok {
		return sentinel.ErrNotFound
	}
	for sid, sec := range s.data.sections {
		if sec.FormID == section.FormID && sec.Order >= section.Order {
			sec.Order++
			s.data.sections[sid] = sec
		}
	}
	stored := *section
	stored.Questions = nil
	s.data.sections[section.ID] = stored
	return nil
}

func (s *InMemoryStore) UpdateSection(_ context.Context, section *models.Section) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.data.sections[section.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	current.Title = section.Title
	current.Gate = section.Gate
	current.UpdatedAt = section.UpdatedAt
	s.data.sections[section.ID] = current
	return nil
}

func (s *InMemoryStore) DeleteSection(_ context.Context, sectionID id.SectionID) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.data.sections[sectionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	s.deleteSectionLocked(sectionID)
	for sid, other := range s.data.sections {
		if other.FormID == sec.FormID && other.Order > sec.Order {
			other.Order--
			s.data.sections[sid] = other
		}
	}
	return nil
}

func (s *InMemoryStore) deleteSectionLocked(sectionID id.SectionID) {
	for qid, q := range s.data.questions {
		if q.SectionID == sectionID {
			s.deleteQuestionLocked(qid)
		}
	}
	delete(s.data.sections, sectionID)
}

func (s *InMemoryStore) SetSectionOrders(_ context.Context, formID id.FormID, orders map[id.SectionID]int) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	for sid, order := range orders {
		sec, ok := s.data.sections[sid]
		if !ok || sec.FormID != formID {
			return sentinel.ErrNotFound
		}
		sec.Order = order
		s.data.sections[sid] = sec
	}
	return nil
}

func (s *InMemoryStore) SectionsLinkedTo(_ context.Context, questionID id.QuestionID) ([]models.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Section
	for _, sec := range s.data.sections {
		if sec.Gate.Rule.IsGated() && sec.Gate.LinkQuestionID != nil && *sec.Gate.LinkQuestionID == questionID {
			out = append(out, sec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// Questions

func (s *InMemoryStore) ListQuestions(_ context.Context, sectionID id.SectionID) ([]models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Question
	for _, q := range s.data.questions {
		if q.SectionID == sectionID {
			out = append(out, cloneQuestion(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *InMemoryStore) ListFormQuestions(_ context.Context, formID id.FormID) ([]models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Question
	for _, q := range s.data.questions {
		if q.FormID == formID {
			out = append(out, cloneQuestion(q))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := s.data.sections[out[i].SectionID], s.data.sections[out[j].SectionID]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

func (s *InMemoryStore) FindQuestion(_ context.Context, questionID id.QuestionID) (*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.data.questions[questionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	q = cloneQuestion(q)
	return &q, nil
}

func (s *InMemoryStore) InsertQuestion(_ context.Context, question *models.Question) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.sections[question.SectionID]; !ok {
		return sentinel.ErrNotFound
	}
	for qid, q := range s.data.questions {
		if q.SectionID == question.SectionID && q.Order >= question.Order {
			q.Order++
			s.data.questions[qid] = q
		}
	}
	stored := cloneQuestion(*question)
	stored.SubQuestions = nil
	s.data.questions[question.ID] = stored
	return nil
}

func (s *InMemoryStore) UpdateQuestion(_ context.Context, question *models.Question) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.data.questions[question.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	next := cloneQuestion(*question)
	next.SectionID, next.FormID, next.Order = current.SectionID, current.FormID, current.Order
	next.SubQuestions = nil
	s.data.questions[question.ID] = next
	return nil
}

func (s *InMemoryStore) DeleteQuestion(_ context.Context, questionID id.QuestionID) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.data.questions[questionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	s.deleteQuestionLocked(questionID)
	for qid, other := range s.data.questions {
		if other.SectionID == q.SectionID && other.Order > q.Order {
			other.Order--
			s.data.questions[qid] = other
		}
	}
	return nil
}

func (s *InMemoryStore) deleteQuestionLocked(questionID id.QuestionID) {
	for sid, sq := range s.data.subs {
		if sq.QuestionID == questionID {
			delete(s.data.subs, sid)
		}
	}
	for key := range s.data.answers {
		if key.question == questionID {
			delete(s.data.answers, key)
		}
	}
	delete(s.data.questions, questionID)
}

func (s *InMemoryStore) SetQuestionOrders(_ context.Context, sectionID id.SectionID, orders map[id.QuestionID]int) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	for qid, order := range orders {
		q, ok := s.data.questions[qid]
		if !ok || q.SectionID != sectionID {
			return sentinel.ErrNotFound
		}
		q.Order = order
		s.data.questions[qid] = q
	}
	return nil
}

func (s *InMemoryStore) QuestionsLinkedTo(_ context.Context, questionID id.QuestionID) ([]models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Question
	for _, q := range s.data.questions {
		if q.Gate.Rule.IsGated() && q.Gate.LinkQuestionID != nil && *q.Gate.LinkQuestionID == questionID {
			out = append(out, cloneQuestion(q))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := s.data.sections[out[i].SectionID], s.data.sections[out[j].SectionID]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

// Sub-questions

func (s *InMemoryStore) ListSubQuestions(_ context.Context, questionID id.QuestionID) ([]models.SubQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.SubQuestion
	for _, sq := range s.data.subs {
		if sq.QuestionID == questionID {
			out = append(out, cloneSub(sq))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *InMemoryStore) ListFormSubQuestions(_ context.Context, formID id.FormID) ([]models.SubQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.SubQuestion
	for _, sq := range s.data.subs {
		if q, ok := s.data.questions[sq.QuestionID]; ok && q.FormID == formID {
			out = append(out, cloneSub(sq))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].QuestionID != out[j].QuestionID {
			return out[i].QuestionID.String() < out[j].QuestionID.String()
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (s *InMemoryStore) FindSubQuestion(_ context.Context, subID id.SubQuestionID) (*models.SubQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sq, ok := s.data.subs[subID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	sq = cloneSub(sq)
	return &sq, nil
}

func (s *InMemoryStore) InsertSubQuestion(_ context.Context, sub *models.SubQuestion) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.questions[sub.QuestionID]; !ok {
		return sentinel.ErrNotFound
	}
	for sid, sq := range s.data.subs {
		if sq.QuestionID == sub.QuestionID && sq.Position >= sub.Position {
			sq.Position++
			s.data.subs[sid] = sq
		}
	}
	s.data.subs[sub.ID] = cloneSub(*sub)
	return nil
}

func (s *InMemoryStore) UpdateSubQuestion(_ context.Context, sub *models.SubQuestion) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.data.subs[sub.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	next := cloneSub(*sub)
	next.QuestionID, next.Position = current.QuestionID, current.Position
	s.data.subs[sub.ID] = next
	return nil
}

func (s *InMemoryStore) DeleteSubQuestion(_ context.Context, subID id.SubQuestionID) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.data.subs[subID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.data.subs, subID)
	for sid, sq := range s.data.subs {
		if sq.QuestionID == sub.QuestionID && sq.Position > sub.Position {
			sq.Position--
			s.data.subs[sid] = sq
		}
	}
	return nil
}

func (s *InMemoryStore) SetSubQuestionPositions(_ context.Context, questionID id.QuestionID, positions map[id.SubQuestionID]int) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	for sid, pos := range positions {
		sq, ok := s.data.subs[sid]
		if !ok || sq.QuestionID != questionID {
			return sentinel.ErrNotFound
		}
		sq.Position = pos
		s.data.subs[sid] = sq
	}
	return nil
}

// Candidates and answers

func (s *InMemoryStore) CreateFormCandidate(_ context.Context, fc *models.FormCandidate) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.forms[fc.FormID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.data.candidates {
		if existing.FormID == fc.FormID && existing.CandidateID == fc.CandidateID {
			return sentinel.ErrConflict
		}
	}
	s.data.candidates[fc.ID] = *fc
	return nil
}

func (s *InMemoryStore) FindFormCandidate(_ context.Context, fcID id.FormCandidateID) (*models.FormCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fc, ok := s.data.candidates[fcID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &fc, nil
}

func (s *InMemoryStore) FindAnswer(_ context.Context, questionID id.QuestionID, fcID id.FormCandidateID) (*models.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.data.answers[answerKey{question: questionID, formCandidate: fcID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &a, nil
}

func (s *InMemoryStore) ListAnswers(_ context.Context, fcID id.FormCandidateID) ([]models.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Answer
	for key, a := range s.data.answers {
		if key.formCandidate == fcID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// UpsertAnswer inserts the answer or replaces the value, validity and
// timestamp of the existing one, keeping its id and comment.
func (s *InMemoryStore) UpsertAnswer(_ context.Context, answer *models.Answer) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	key := answerKey{question: answer.QuestionID, formCandidate: answer.FormCandidateID}
	if existing, ok := s.data.answers[key]; ok {
		existing.Value = answer.Value
		existing.ValidAnswer = answer.ValidAnswer
		existing.UpdatedAt = answer.UpdatedAt
		s.data.answers[key] = existing
		*answer = existing
		return nil
	}
	s.data.answers[key] = *answer
	return nil
}

func (s *InMemoryStore) FindAnswerByID(_ context.Context, answerID uuid.UUID) (*models.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.data.answers {
		if a.ID == answerID {
			return &a, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// ReviewAnswer records a reviewer's verdict and comment on a stored answer.
func (s *InMemoryStore) ReviewAnswer(_ context.Context, answerID uuid.UUID, valid bool, comment *string, now time.Time) error {
	defer s.exclusive()()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, a := range s.data.answers {
		if a.ID == answerID {
			a.ValidAnswer = valid
			a.Comment = comment
			a.UpdatedAt = now
			s.data.answers[key] = a
			return nil
		}
	}
	return sentinel.ErrNotFound
}

// CandidateEmails lists the answers the candidate gave to EMAIL questions in
// other submissions of the same process, lower-cased.
func (s *InMemoryStore) CandidateEmails(_ context.Context, candidateID id.CandidateID, processID id.ProcessID, exclude id.FormCandidateID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for key, a := range s.data.answers {
		if key.formCandidate == exclude {
			continue
		}
		fc, ok := s.data.candidates[key.formCandidate]
		if !ok || fc.CandidateID != candidateID || fc.ProcessID != processID {
			continue
		}
		if q, ok := s.data.questions[key.question]; ok && q.Type == models.QuestionEmail && strings.TrimSpace(a.Value) != "" {
			out = append(out, strings.ToLower(strings.TrimSpace(a.Value)))
		}
	}
	sort.Strings(out)
	return out, nil
}

func cloneQuestion(q models.Question) models.Question {
	q.Options = append([]models.Option(nil), q.Options...)
	q.Validations = append([]models.Validation(nil), q.Validations...)
	return q
}

func cloneSub(sq models.SubQuestion) models.SubQuestion {
	sq.Options = append([]models.Option(nil), sq.Options...)
	sq.Validations = append([]models.Validation(nil), sq.Validations...)
	return sq
}
