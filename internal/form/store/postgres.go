package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/sentinel"
	txctx "github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// ApplySchema creates the form tables if they do not exist.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply form schema: %w", err)
	}
	return nil
}

// PostgresStore persists forms in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPostgres constructs a PostgreSQL-backed form store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// WithTx returns a store bound to tx; every query runs inside it.
func (s *PostgresStore) WithTx(tx *sql.Tx) *PostgresStore {
	return &PostgresStore{db: s.db, tx: tx}
}

func (s *PostgresStore) q(ctx context.Context) txctx.Execer {
	if s.tx != nil {
		return s.tx
	}
	return txctx.Or(ctx, s.db)
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// classify maps driver errors onto store sentinels.
func classify(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
		case foreignKeyViolation:
			return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// prefixed qualifies every column of a column list with a table alias.
func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

// Forms

const formColumns = `id, process_id, name, type, email_question_id, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanForm(row scanner) (*models.Form, error) {
	var (
		f     models.Form
		fid   uuid.UUID
		pid   uuid.UUID
		email uuid.NullUUID
		ftype string
	)
	if err := row.Scan(&fid, &pid, &f.Name, &ftype, &email, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.ID, f.ProcessID, f.Type = id.FormID(fid), id.ProcessID(pid), models.FormType(ftype)
	if email.Valid {
		qid := id.QuestionID(email.UUID)
		f.EmailQuestionID = &qid
	}
	return &f, nil
}

func nullQuestion(qid *id.QuestionID) uuid.NullUUID {
	if qid == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*qid), Valid: true}
}

func nullSection(sid *id.SectionID) uuid.NullUUID {
	if sid == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*sid), Valid: true}
}

func (s *PostgresStore) CreateForm(ctx context.Context, form *models.Form) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO forms (`+formColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(form.ID), uuid.UUID(form.ProcessID), form.Name, string(form.Type),
		nullQuestion(form.EmailQuestionID), form.CreatedAt, form.UpdatedAt,
	)
	if err != nil {
		return classify(err, "create form")
	}
	return nil
}

func (s *PostgresStore) UpdateForm(ctx context.Context, form *models.Form) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE forms SET name = $2, type = $3, email_question_id = $4, updated_at = $5
		WHERE id = $1`,
		uuid.UUID(form.ID), form.Name, string(form.Type), nullQuestion(form.EmailQuestionID), form.UpdatedAt,
	)
	if err != nil {
		return classify(err, "update form")
	}
	return requireRow(res, "update form")
}

func (s *PostgresStore) DeleteForm(ctx context.Context, formID id.FormID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM forms WHERE id = $1`, uuid.UUID(formID))
	if err != nil {
		return classify(err, "delete form")
	}
	return requireRow(res, "delete form")
}

func (s *PostgresStore) FindForm(ctx context.Context, formID id.FormID) (*models.Form, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+formColumns+` FROM forms WHERE id = $1`, uuid.UUID(formID))
	f, err := scanForm(row)
	if err != nil {
		return nil, classify(err, "find form")
	}
	return f, nil
}

// LockForm reads the form with FOR UPDATE; only meaningful inside a
// transaction.
func (s *PostgresStore) LockForm(ctx context.Context, formID id.FormID) (*models.Form, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+formColumns+` FROM forms WHERE id = $1 FOR UPDATE`, uuid.UUID(formID))
	f, err := scanForm(row)
	if err != nil {
		return nil, classify(err, "lock form")
	}
	return f, nil
}

func (s *PostgresStore) ListFormsByProcess(ctx context.Context, processID id.ProcessID) ([]models.Form, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+formColumns+` FROM forms WHERE process_id = $1 ORDER BY created_at, id`, uuid.UUID(processID))
	if err != nil {
		return nil, classify(err, "list forms")
	}
	defer rows.Close()

	var out []models.Form
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan form: %w", err)
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FormHasAnswers(ctx context.Context, formID id.FormID) (bool, error) {
	var exists bool
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM answers a JOIN questions q ON q.id = a.question_id WHERE q.form_id = $1
		)`, uuid.UUID(formID)).Scan(&exists)
	if err != nil {
		return false, classify(err, "check form answers")
	}
	return exists, nil
}

// Gates

type gateColumns struct {
	rule    string
	section uuid.NullUUID
	link    uuid.NullUUID
	answer  sql.NullString
	value   sql.NullString
}

func (g *gateColumns) targets() []any {
	return []any{&g.rule, &g.section, &g.link, &g.answer, &g.value}
}

func (g *gateColumns) gate() models.Gate {
	out := models.Gate{Rule: models.DisplayRule(g.rule)}
	if g.section.Valid {
		sid := id.SectionID(g.section.UUID)
		out.LinkSectionID = &sid
	}
	if g.link.Valid {
		qid := id.QuestionID(g.link.UUID)
		out.LinkQuestionID = &qid
	}
	if g.answer.Valid {
		rule := models.AnswerDisplayRule(g.answer.String)
		out.AnswerRule = &rule
	}
	if g.value.Valid {
		v := g.value.String
		out.AnswerValue = &v
	}
	return out
}

func gateArgs(g models.Gate) []any {
	var rule, value sql.NullString
	if g.AnswerRule != nil {
		rule = sql.NullString{String: string(*g.AnswerRule), Valid: true}
	}
	if g.AnswerValue != nil {
		value = sql.NullString{String: *g.AnswerValue, Valid: true}
	}
	return []any{string(g.Rule), nullSection(g.LinkSectionID), nullQuestion(g.LinkQuestionID), rule, value}
}

// Sections

const sectionColumns = `id, form_id, title, sort_order,
	display_rule, display_link_section_id, question_display_link, answer_display_rule, answer_display_value,
	created_at, updated_at`

func scanSection(row scanner) (*models.Section, error) {
	var (
		sec      models.Section
		sid, fid uuid.UUID
		gate     gateColumns
	)
	dest := append([]any{&sid, &fid, &sec.Title, &sec.Order}, gate.targets()...)
	dest = append(dest, &sec.CreatedAt, &sec.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	sec.ID, sec.FormID, sec.Gate = id.SectionID(sid), id.FormID(fid), gate.gate()
	return &sec, nil
}

func (s *PostgresStore) querySections(ctx context.Context, op, where string, args ...any) ([]models.Section, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT `+sectionColumns+` FROM sections WHERE `+where+` ORDER BY sort_order`, args...)
	if err != nil {
		return nil, classify(err, op)
	}
	defer rows.Close()

	var out []models.Section
	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		out = append(out, *sec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListSections(ctx context.Context, formID id.FormID) ([]models.Section, error) {
	return s.querySections(ctx, "list sections", "form_id = $1", uuid.UUID(formID))
}

func (s *PostgresStore) SectionsLinkedTo(ctx context.Context, questionID id.QuestionID) ([]models.Section, error) {
	return s.querySections(ctx, "sections linked to question",
		"question_display_link = $1 AND display_rule <> 'ALWAYS_SHOW'", uuid.UUID(questionID))
}

func (s *PostgresStore) FindSection(ctx context.Context, sectionID id.SectionID) (*models.Section, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+sectionColumns+` FROM sections WHERE id = $1`, uuid.UUID(sectionID))
	sec, err := scanSection(row)
	if err != nil {
		return nil, classify(err, "find section")
	}
	return sec, nil
}

func (s *PostgresStore) InsertSection(ctx context.Context, section *models.Section) error {
	q := s.q(ctx)
	if _, err := q.ExecContext(ctx, `
		UPDATE sections SET sort_order = sort_order + 1 WHERE form_id = $1 AND sort_order >= $2`,
		uuid.UUID(section.FormID), section.Order,
	); err != nil {
		return classify(err, "shift sections")
	}
	args := append([]any{uuid.UUID(section.ID), uuid.UUID(section.FormID), section.Title, section.Order}, gateArgs(section.Gate)...)
	args = append(args, section.CreatedAt, section.UpdatedAt)
	if _, err := q.ExecContext(ctx, `
		INSERT INTO sections (`+sectionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, args...); err != nil {
		return classify(err, "insert section")
	}
	return nil
}

func (s *PostgresStore) UpdateSection(ctx context.Context, section *models.Section) error {
	args := append([]any{uuid.UUID(section.ID), section.Title}, gateArgs(section.Gate)...)
	args = append(args, section.UpdatedAt)
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE sections SET title = $2,
			display_rule = $3, display_link_section_id = $4, question_display_link = $5,
			answer_display_rule = $6, answer_display_value = $7, updated_at = $8
		WHERE id = $1`, args...)
	if err != nil {
		return classify(err, "update section")
	}
	return requireRow(res, "update section")
}

func (s *PostgresStore) DeleteSection(ctx context.Context, sectionID id.SectionID) error {
	q := s.q(ctx)
	var (
		formID uuid.UUID
		order  int
	)
	err := q.QueryRowContext(ctx, `DELETE FROM sections WHERE id = $1 RETURNING form_id, sort_order`,
		uuid.UUID(sectionID)).Scan(&formID, &order)
	if err != nil {
		return classify(err, "delete section")
	}
	if _, err := q.ExecContext(ctx, `
		UPDATE sections SET sort_order = sort_order - 1 WHERE form_id = $1 AND sort_order > $2`,
		formID, order,
	); err != nil {
		return classify(err, "renumber sections")
	}
	return nil
}

func (s *PostgresStore) SetSectionOrders(ctx context.Context, formID id.FormID, orders map[id.SectionID]int) error {
	ids, values := make([]string, 0, len(orders)), make([]int64, 0, len(orders))
	for sid, order := range orders {
		ids = append(ids, sid.String())
		values = append(values, int64(order))
	}
	return s.setOrders(ctx, "set section orders", `
		UPDATE sections AS t SET sort_order = v.ord
		FROM unnest($2::uuid[], $3::int[]) AS v(id, ord)
		WHERE t.id = v.id AND t.form_id = $1`, uuid.UUID(formID), ids, values)
}

// setOrders applies a batch of orders in one statement and checks that every
// row was touched.
func (s *PostgresStore) setOrders(ctx context.Context, op, query string, parent uuid.UUID, ids []string, values []int64) error {
	res, err := s.q(ctx).ExecContext(ctx, query, parent, pq.Array(ids), pq.Array(values))
	if err != nil {
		return classify(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if int(n) != len(ids) {
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}
	return nil
}

// Questions

const questionColumns = `id, form_id, section_id, sort_order, statement, description, type,
	display_rule, display_link_section_id, question_display_link, answer_display_rule, answer_display_value,
	options, validations, created_at, updated_at`

func scanQuestion(row scanner) (*models.Question, error) {
	var (
		q                models.Question
		qid, fid, sid    uuid.UUID
		qtype            string
		gate             gateColumns
		options, validns []byte
	)
	dest := append([]any{&qid, &fid, &sid, &q.Order, &q.Statement, &q.Description, &qtype}, gate.targets()...)
	dest = append(dest, &options, &validns, &q.CreatedAt, &q.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	q.ID, q.FormID, q.SectionID = id.QuestionID(qid), id.FormID(fid), id.SectionID(sid)
	q.Type, q.Gate = models.QuestionType(qtype), gate.gate()
	if err := decodeContent(options, validns, &q.Options, &q.Validations); err != nil {
		return nil, err
	}
	return &q, nil
}

func decodeContent(options, validations []byte, optOut *[]models.Option, valOut *[]models.Validation) error {
	if err := json.Unmarshal(options, optOut); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	if err := json.Unmarshal(validations, valOut); err != nil {
		return fmt.Errorf("decode validations: %w", err)
	}
	return nil
}

func encodeContent(options []models.Option, validations []models.Validation) ([]byte, []byte, error) {
	if options == nil {
		options = []models.Option{}
	}
	if validations == nil {
		validations = []models.Validation{}
	}
	o, err := json.Marshal(options)
	if err != nil {
		return nil, nil, fmt.Errorf("encode options: %w", err)
	}
	v, err := json.Marshal(validations)
	if err != nil {
		return nil, nil, fmt.Errorf("encode validations: %w", err)
	}
	return o, v, nil
}

func (s *PostgresStore) queryQuestions(ctx context.Context, op, query string, args ...any) ([]models.Question, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, op)
	}
	defer rows.Close()

	var out []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListQuestions(ctx context.Context, sectionID id.SectionID) ([]models.Question, error) {
	return s.queryQuestions(ctx, "list questions",
		`SELECT `+questionColumns+` FROM questions WHERE section_id = $1 ORDER BY sort_order`, uuid.UUID(sectionID))
}

func (s *PostgresStore) ListFormQuestions(ctx context.Context, formID id.FormID) ([]models.Question, error) {
	return s.queryQuestions(ctx, "list form questions", `
		SELECT `+prefixed("q", questionColumns)+`
		FROM questions q JOIN sections s ON s.id = q.section_id
		WHERE q.form_id = $1
		ORDER BY s.sort_order, q.sort_order`, uuid.UUID(formID))
}

func (s *PostgresStore) QuestionsLinkedTo(ctx context.Context, questionID id.QuestionID) ([]models.Question, error) {
	return s.queryQuestions(ctx, "questions linked to question", `
		SELECT `+prefixed("q", questionColumns)+`
		FROM questions q JOIN sections s ON s.id = q.section_id
		WHERE q.question_display_link = $1 AND q.display_rule <> 'ALWAYS_SHOW'
		ORDER BY s.sort_order, q.sort_order`, uuid.UUID(questionID))
}

func (s *PostgresStore) FindQuestion(ctx context.Context, questionID id.QuestionID) (*models.Question, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, uuid.UUID(questionID))
	q, err := scanQuestion(row)
	if err != nil {
		return nil, classify(err, "find question")
	}
	return q, nil
}

func (s *PostgresStore) InsertQuestion(ctx context.Context, question *models.Question) error {
	options, validations, err := encodeContent(question.Options, question.Validations)
	if err != nil {
		return err
	}
	q := s.q(ctx)
	if _, err := q.ExecContext(ctx, `
		UPDATE questions SET sort_order = sort_order + 1 WHERE section_id = $1 AND sort_order >= $2`,
		uuid.UUID(question.SectionID), question.Order,
	); err != nil {
		return classify(err, "shift questions")
	}
	args := []any{
		uuid.UUID(question.ID), uuid.UUID(question.FormID), uuid.UUID(question.SectionID), question.Order,
		question.Statement, question.Description, string(question.Type),
	}
	args = append(args, gateArgs(question.Gate)...)
	args = append(args, options, validations, question.CreatedAt, question.UpdatedAt)
	if _, err := q.ExecContext(ctx, `
		INSERT INTO questions (`+questionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`, args...); err != nil {
		return classify(err, "insert question")
	}
	return nil
}

func (s *PostgresStore) UpdateQuestion(ctx context.Context, question *models.Question) error {
	options, validations, err := encodeContent(question.Options, question.Validations)
	if err != nil {
		return err
	}
	args := []any{uuid.UUID(question.ID), question.Statement, question.Description, string(question.Type)}
	args = append(args, gateArgs(question.Gate)...)
	args = append(args, options, validations, question.UpdatedAt)
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE questions SET statement = $2, description = $3, type = $4,
			display_rule = $5, display_link_section_id = $6, question_display_link = $7,
			answer_display_rule = $8, answer_display_value = $9,
			options = $10, validations = $11, updated_at = $12
		WHERE id = $1`, args...)
	if err != nil {
		return classify(err, "update question")
	}
	return requireRow(res, "update question")
}

func (s *PostgresStore) DeleteQuestion(ctx context.Context, questionID id.QuestionID) error {
	q := s.q(ctx)
	var (
		sectionID uuid.UUID
		order     int
	)
	err := q.QueryRowContext(ctx, `DELETE FROM questions WHERE id = $1 RETURNING section_id, sort_order`,
		uuid.UUID(questionID)).Scan(&sectionID, &order)
	if err != nil {
		return classify(err, "delete question")
	}
	if _, err := q.ExecContext(ctx, `
		UPDATE questions SET sort_order = sort_order - 1 WHERE section_id = $1 AND sort_order > $2`,
		sectionID, order,
	); err != nil {
		return classify(err, "renumber questions")
	}
	return nil
}

func (s *PostgresStore) SetQuestionOrders(ctx context.Context, sectionID id.SectionID, orders map[id.QuestionID]int) error {
	ids, values := make([]string, 0, len(orders)), make([]int64, 0, len(orders))
	for qid, order := range orders {
		ids = append(ids, qid.String())
		values = append(values, int64(order))
	}
	return s.setOrders(ctx, "set question orders", `
		UPDATE questions AS t SET sort_order = v.ord
		FROM unnest($2::uuid[], $3::int[]) AS v(id, ord)
		WHERE t.id = v.id AND t.section_id = $1`, uuid.UUID(sectionID), ids, values)
}

// Sub-questions

const subQuestionColumns = `id, question_id, position, statement, description, type, options, validations, created_at, updated_at`

func scanSubQuestion(row scanner) (*models.SubQuestion, error) {
	var (
		sq               models.SubQuestion
		sid, qid         uuid.UUID
		qtype            string
		options, validns []byte
	)
	if err := row.Scan(&sid, &qid, &sq.Position, &sq.Statement, &sq.Description, &qtype,
		&options, &validns, &sq.CreatedAt, &sq.UpdatedAt); err != nil {
		return nil, err
	}
	sq.ID, sq.QuestionID, sq.Type = id.SubQuestionID(sid), id.QuestionID(qid), models.QuestionType(qtype)
	if err := decodeContent(options, validns, &sq.Options, &sq.Validations); err != nil {
		return nil, err
	}
	return &sq, nil
}

func (s *PostgresStore) querySubQuestions(ctx context.Context, op, query string, args ...any) ([]models.SubQuestion, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, op)
	}
	defer rows.Close()

	var out []models.SubQuestion
	for rows.Next() {
		sq, err := scanSubQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sub-question: %w", err)
		}
		out = append(out, *sq)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListSubQuestions(ctx context.Context, questionID id.QuestionID) ([]models.SubQuestion, error) {
	return s.querySubQuestions(ctx, "list sub-questions",
		`SELECT `+subQuestionColumns+` FROM sub_questions WHERE question_id = $1 ORDER BY position`, uuid.UUID(questionID))
}

func (s *PostgresStore) ListFormSubQuestions(ctx context.Context, formID id.FormID) ([]models.SubQuestion, error) {
	return s.querySubQuestions(ctx, "list form sub-questions", `
		SELECT `+prefixed("sq", subQuestionColumns)+`
		FROM sub_questions sq JOIN questions q ON q.id = sq.question_id
		WHERE q.form_id = $1
		ORDER BY sq.question_id, sq.position`, uuid.UUID(formID))
}

func (s *PostgresStore) FindSubQuestion(ctx context.Context, subID id.SubQuestionID) (*models.SubQuestion, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+subQuestionColumns+` FROM sub_questions WHERE id = $1`, uuid.UUID(subID))
	sq, err := scanSubQuestion(row)
	if err != nil {
		return nil, classify(err, "find sub-question")
	}
	return sq, nil
}

func (s *PostgresStore) InsertSubQuestion(ctx context.Context, sub *models.SubQuestion) error {
	options, validations, err := encodeContent(sub.Options, sub.Validations)
	if err != nil {
		return err
	}
	q := s.q(ctx)
	if _, err := q.ExecContext(ctx, `
		UPDATE sub_questions SET position = position + 1 WHERE question_id = $1 AND position >= $2`,
		uuid.UUID(sub.QuestionID), sub.Position,
	); err != nil {
		return classify(err, "shift sub-questions")
	}
	if _, err := q.ExecContext(ctx, `
		INSERT INTO sub_questions (`+subQuestionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(sub.ID), uuid.UUID(sub.QuestionID), sub.Position, sub.Statement, sub.Description,
		string(sub.Type), options, validations, sub.CreatedAt, sub.UpdatedAt,
	); err != nil {
		return classify(err, "insert sub-question")
	}
	return nil
}

func (s *PostgresStore) UpdateSubQuestion(ctx context.Context, sub *models.SubQuestion) error {
	options, validations, err := encodeContent(sub.Options, sub.Validations)
	if err != nil {
		return err
	}
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE sub_questions SET statement = $2, description = $3, type = $4,
			options = $5, validations = $6, updated_at = $7
		WHERE id = $1`,
		uuid.UUID(sub.ID), sub.Statement, sub.Description, string(sub.Type), options, validations, sub.UpdatedAt,
	)
	if err != nil {
		return classify(err, "update sub-question")
	}
	return requireRow(res, "update sub-question")
}

func (s *PostgresStore) DeleteSubQuestion(ctx context.Context, subID id.SubQuestionID) error {
	q := s.q(ctx)
	var (
		questionID uuid.UUID
		position   int
	)
	err := q.QueryRowContext(ctx, `DELETE FROM sub_questions WHERE id = $1 RETURNING question_id, position`,
		uuid.UUID(subID)).Scan(&questionID, &position)
	if err != nil {
		return classify(err, "delete sub-question")
	}
	if _, err := q.ExecContext(ctx, `
		UPDATE sub_questions SET position = position - 1 WHERE question_id = $1 AND position > $2`,
		questionID, position,
	); err != nil {
		return classify(err, "renumber sub-questions")
	}
	return nil
}

func (s *PostgresStore) SetSubQuestionPositions(ctx context.Context, questionID id.QuestionID, positions map[id.SubQuestionID]int) error {
	ids, values := make([]string, 0, len(positions)), make([]int64, 0, len(positions))
	for sid, pos := range positions {
		ids = append(ids, sid.String())
		values = append(values, int64(pos))
	}
	return s.setOrders(ctx, "set sub-question positions", `
		UPDATE sub_questions AS t SET position = v.ord
		FROM unnest($2::uuid[], $3::int[]) AS v(id, ord)
		WHERE t.id = v.id AND t.question_id = $1`, uuid.UUID(questionID), ids, values)
}

// Candidates and answers

func (s *PostgresStore) CreateFormCandidate(ctx context.Context, fc *models.FormCandidate) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO form_candidates (id, form_id, candidate_id, process_id) VALUES ($1, $2, $3, $4)`,
		uuid.UUID(fc.ID), uuid.UUID(fc.FormID), uuid.UUID(fc.CandidateID), uuid.UUID(fc.ProcessID),
	)
	if err != nil {
		return classify(err, "create form candidate")
	}
	return nil
}

func (s *PostgresStore) FindFormCandidate(ctx context.Context, fcID id.FormCandidateID) (*models.FormCandidate, error) {
	var fcid, fid, cid, pid uuid.UUID
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, form_id, candidate_id, process_id FROM form_candidates WHERE id = $1`,
		uuid.UUID(fcID)).Scan(&fcid, &fid, &cid, &pid)
	if err != nil {
		return nil, classify(err, "find form candidate")
	}
	return &models.FormCandidate{
		ID:          id.FormCandidateID(fcid),
		FormID:      id.FormID(fid),
		CandidateID: id.CandidateID(cid),
		ProcessID:   id.ProcessID(pid),
	}, nil
}

const answerColumns = `id, question_id, form_candidate_id, value, valid_answer, comment, created_at, updated_at`

func scanAnswer(row scanner) (*models.Answer, error) {
	var (
		a        models.Answer
		qid, fid uuid.UUID
		comment  sql.NullString
	)
	if err := row.Scan(&a.ID, &qid, &fid, &a.Value, &a.ValidAnswer, &comment, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.QuestionID, a.FormCandidateID = id.QuestionID(qid), id.FormCandidateID(fid)
	if comment.Valid {
		c := comment.String
		a.Comment = &c
	}
	return &a, nil
}

func (s *PostgresStore) FindAnswer(ctx context.Context, questionID id.QuestionID, fcID id.FormCandidateID) (*models.Answer, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT `+answerColumns+` FROM answers WHERE question_id = $1 AND form_candidate_id = $2`,
		uuid.UUID(questionID), uuid.UUID(fcID))
	a, err := scanAnswer(row)
	if err != nil {
		return nil, classify(err, "find answer")
	}
	return a, nil
}

func (s *PostgresStore) FindAnswerByID(ctx context.Context, answerID uuid.UUID) (*models.Answer, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+answerColumns+` FROM answers WHERE id = $1`, answerID)
	a, err := scanAnswer(row)
	if err != nil {
		return nil, classify(err, "find answer")
	}
	return a, nil
}

func (s *PostgresStore) ListAnswers(ctx context.Context, fcID id.FormCandidateID) ([]models.Answer, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+answerColumns+` FROM answers WHERE form_candidate_id = $1 ORDER BY created_at, id`, uuid.UUID(fcID))
	if err != nil {
		return nil, classify(err, "list answers")
	}
	defer rows.Close()

	var out []models.Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// UpsertAnswer inserts the answer or updates the stored one in place. The
// stored row is read back into answer.
func (s *PostgresStore) UpsertAnswer(ctx context.Context, answer *models.Answer) error {
	row := s.q(ctx).QueryRowContext(ctx, `
		INSERT INTO answers (`+answerColumns+`)
		VALUES ($1, $2, $3, $4, $5, NULL, $6, $7)
		ON CONFLICT (question_id, form_candidate_id) DO UPDATE SET
			value = EXCLUDED.value,
			valid_answer = EXCLUDED.valid_answer,
			updated_at = EXCLUDED.updated_at
		RETURNING `+answerColumns,
		answer.ID, uuid.UUID(answer.QuestionID), uuid.UUID(answer.FormCandidateID),
		answer.Value, answer.ValidAnswer, answer.CreatedAt, answer.UpdatedAt,
	)
	stored, err := scanAnswer(row)
	if err != nil {
		return classify(err, "upsert answer")
	}
	*answer = *stored
	return nil
}

func (s *PostgresStore) ReviewAnswer(ctx context.Context, answerID uuid.UUID, valid bool, comment *string, now time.Time) error {
	var c sql.NullString
	if comment != nil {
		c = sql.NullString{String: *comment, Valid: true}
	}
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE answers SET valid_answer = $2, comment = $3, updated_at = $4 WHERE id = $1`,
		answerID, valid, c, now,
	)
	if err != nil {
		return classify(err, "review answer")
	}
	return requireRow(res, "review answer")
}

func (s *PostgresStore) CandidateEmails(ctx context.Context, candidateID id.CandidateID, processID id.ProcessID, exclude id.FormCandidateID) ([]string, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT DISTINCT lower(trim(a.value))
		FROM answers a
		JOIN form_candidates fc ON fc.id = a.form_candidate_id
		JOIN questions q ON q.id = a.question_id
		WHERE fc.candidate_id = $1 AND fc.process_id = $2 AND fc.id <> $3
			AND q.type = 'EMAIL' AND trim(a.value) <> ''
		ORDER BY 1`,
		uuid.UUID(candidateID), uuid.UUID(processID), uuid.UUID(exclude),
	)
	if err != nil {
		return nil, classify(err, "candidate emails")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		out = append(out, email)
	}
	return out, rows.Err()
}
