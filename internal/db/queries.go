package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/tradehand/tradehand/internal/contacts"
	"github.com/tradehand/tradehand/internal/errors"
	"github.com/tradehand/tradehand/internal/task"
)

// taskColumns is the select list shared by task readers. t = tasks, c = captures.
const taskColumns = `
	t.id, t.user_id, t.capture_id, t.type, t.status,
	t.contact_id, t.contact_name, t.contact_phone, t.contact_email,
	t.message, t.delivery_method, c.transcription,
	t.scheduled_for, t.created_at, t.approved_at, t.archived_at,
	t.dismissed_at, t.expires_at`

// InsertCapture stores a new capture.
func InsertCapture(ctx context.Context, db *sql.DB, c *task.Capture) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO captures (id, user_id, transcription, duration_seconds, status, captured_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Transcription, c.DurationSeconds, string(c.Status), c.CapturedAt.Unix(),
	)
	if err != nil {
		return errors.NewPersistence(err)
	}
	return nil
}

// GetCapture retrieves a capture scoped to its owner.
func GetCapture(ctx context.Context, db *sql.DB, userID, id string) (*task.Capture, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, user_id, transcription, duration_seconds, status, captured_at
		FROM captures WHERE id = ? AND user_id = ?`, id, userID)

	var c task.Capture
	var status string
	var capturedAt int64
	err := row.Scan(&c.ID, &c.UserID, &c.Transcription, &c.DurationSeconds, &status, &capturedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("capture", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	c.Status = task.CaptureStatus(status)
	c.CapturedAt = time.Unix(capturedAt, 0).UTC()
	return &c, nil
}

// SetCaptureStatus flips a capture's processing status. The transcription
// itself is never touched.
func SetCaptureStatus(ctx context.Context, db *sql.DB, userID, id string, status task.CaptureStatus) error {
	res, err := db.ExecContext(ctx,
		`UPDATE captures SET status = ? WHERE id = ? AND user_id = ?`,
		string(status), id, userID)
	if err != nil {
		return errors.NewPersistence(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound("capture", id)
	}
	return nil
}

// InsertTask stores a new task.
func InsertTask(ctx context.Context, db *sql.DB, t *task.Task) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, user_id, capture_id, type, status,
			contact_id, contact_name, contact_phone, contact_email,
			message, delivery_method, scheduled_for, created_at,
			approved_at, archived_at, dismissed_at, expires_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.CaptureID, string(t.Type), string(t.Status),
		toNullString(t.ContactID), toNullString(t.ContactName),
		toNullString(t.ContactPhone), toNullString(t.ContactEmail),
		t.Message, string(t.DeliveryMethod), toNullTime(t.ScheduledFor), t.CreatedAt.Unix(),
		toNullTime(t.ApprovedAt), toNullTime(t.ArchivedAt), toNullTime(t.DismissedAt), t.ExpiresAt.Unix(),
	)
	if err != nil {
		return errors.NewPersistence(err)
	}
	return nil
}

// GetTask retrieves a task scoped to its owner, with the source capture's
// transcription joined in.
func GetTask(ctx context.Context, db *sql.DB, userID, id string) (*task.Task, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t JOIN captures c ON c.id = t.capture_id
		WHERE t.id = ? AND t.user_id = ?`, id, userID)

	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("task", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return t, nil
}

// ListTasks returns every task belonging to the user, newest first.
func ListTasks(ctx context.Context, db *sql.DB, userID string) ([]task.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t JOIN captures c ON c.id = t.capture_id
		WHERE t.user_id = ?
		ORDER BY t.created_at DESC, t.id DESC`, userID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	tasks := make([]task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return tasks, nil
}

// SaveTransition persists the mutable fields a lifecycle transition may
// touch. The row is matched on (id, user_id, expected previous status) so a
// concurrent transition loses cleanly instead of double-applying.
func SaveTransition(ctx context.Context, db *sql.DB, t *task.Task, prev task.Status) error {
	res, err := db.ExecContext(ctx, `
		UPDATE tasks SET
			status = ?, contact_id = ?, contact_name = ?,
			contact_phone = ?, contact_email = ?, message = ?,
			scheduled_for = ?, approved_at = ?, archived_at = ?, dismissed_at = ?
		WHERE id = ? AND user_id = ? AND status = ?`,
		string(t.Status), toNullString(t.ContactID), toNullString(t.ContactName),
		toNullString(t.ContactPhone), toNullString(t.ContactEmail), t.Message,
		toNullTime(t.ScheduledFor), toNullTime(t.ApprovedAt),
		toNullTime(t.ArchivedAt), toNullTime(t.DismissedAt),
		t.ID, t.UserID, string(prev),
	)
	if err != nil {
		return errors.NewPersistence(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound("task", t.ID)
	}
	return nil
}

// ArchiveExpired moves expired pending and approved tasks to archived. An
// empty userID sweeps every owner. Returns the number of tasks archived.
func ArchiveExpired(ctx context.Context, db *sql.DB, userID string, now time.Time) (int, error) {
	query := `
		UPDATE tasks SET status = ?, archived_at = ?
		WHERE status IN (?, ?) AND expires_at <= ?`
	args := []any{string(task.StatusArchived), now.Unix(), string(task.StatusPending), string(task.StatusApproved), now.Unix()}
	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewPersistence(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

// InsertContact stores a new contact.
func InsertContact(ctx context.Context, db *sql.DB, c *contacts.Contact) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO contacts (id, user_id, name, phone, email, kind, notes, last_contact_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, toNullString(c.Phone), toNullString(c.Email),
		c.Kind, c.Notes, toNullTime(c.LastContactAt), c.CreatedAt.Unix(), c.UpdatedAt.Unix(),
	)
	if err != nil {
		return errors.NewPersistence(err)
	}
	return nil
}

// GetContact retrieves a contact scoped to its owner.
func GetContact(ctx context.Context, db *sql.DB, userID, id string) (*contacts.Contact, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, user_id, name, phone, email, kind, notes, last_contact_at, created_at, updated_at
		FROM contacts WHERE id = ? AND user_id = ?`, id, userID)

	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("contact", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// ListContacts returns the user's full contact directory, name order.
func ListContacts(ctx context.Context, db *sql.DB, userID string) ([]contacts.Contact, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, name, phone, email, kind, notes, last_contact_at, created_at, updated_at
		FROM contacts WHERE user_id = ? ORDER BY name COLLATE NOCASE`, userID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := make([]contacts.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// TouchContact stamps last_contact_at, used when an approved task targets
// the contact.
func TouchContact(ctx context.Context, db *sql.DB, userID, id string, at time.Time) error {
	_, err := db.ExecContext(ctx,
		`UPDATE contacts SET last_contact_at = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		at.Unix(), at.Unix(), id, userID)
	if err != nil {
		return errors.NewPersistence(err)
	}
	return nil
}

// InsertToken registers an API token for a user.
func InsertToken(ctx context.Context, db *sql.DB, token, userID string, at time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO api_tokens (token, user_id, created_at) VALUES (?, ?, ?)`,
		token, userID, at.Unix())
	if err != nil {
		return errors.NewPersistence(err)
	}
	return nil
}

// ResolveToken maps a bearer token to its user id.
func ResolveToken(ctx context.Context, db *sql.DB, token string) (string, error) {
	var userID string
	err := db.QueryRowContext(ctx,
		`SELECT user_id FROM api_tokens WHERE token = ?`, token).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", errors.NewUnauthorized()
	}
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return userID, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*task.Task, error) {
	var t task.Task
	var typ, status, delivery string
	var contactID, contactName, contactPhone, contactEmail sql.NullString
	var scheduledFor, approvedAt, archivedAt, dismissedAt sql.NullInt64
	var createdAt, expiresAt int64

	err := s.Scan(
		&t.ID, &t.UserID, &t.CaptureID, &typ, &status,
		&contactID, &contactName, &contactPhone, &contactEmail,
		&t.Message, &delivery, &t.OriginalTranscription,
		&scheduledFor, &createdAt, &approvedAt, &archivedAt,
		&dismissedAt, &expiresAt,
	)
	if err != nil {
		return nil, err
	}

	t.Type = task.Type(typ)
	t.Status = task.Status(status)
	t.DeliveryMethod = task.DeliveryMethod(delivery)
	t.ContactID = fromNullString(contactID)
	t.ContactName = fromNullString(contactName)
	t.ContactPhone = fromNullString(contactPhone)
	t.ContactEmail = fromNullString(contactEmail)
	t.ScheduledFor = fromNullTime(scheduledFor)
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	t.ApprovedAt = fromNullTime(approvedAt)
	t.ArchivedAt = fromNullTime(archivedAt)
	t.DismissedAt = fromNullTime(dismissedAt)
	t.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return &t, nil
}

func scanContact(s scanner) (*contacts.Contact, error) {
	var c contacts.Contact
	var phone, email sql.NullString
	var lastContactAt sql.NullInt64
	var createdAt, updatedAt int64

	err := s.Scan(&c.ID, &c.UserID, &c.Name, &phone, &email, &c.Kind, &c.Notes,
		&lastContactAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.Phone = fromNullString(phone)
	c.Email = fromNullString(email)
	c.LastContactAt = fromNullTime(lastContactAt)
	c.CreatedAt = time.Unix(createdAt, 0).UTC()
	c.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &c, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func toNullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func fromNullTime(ni sql.NullInt64) *time.Time {
	if !ni.Valid {
		return nil
	}
	ts := time.Unix(ni.Int64, 0).UTC()
	return &ts
}
