package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/case-service/internal/domain"
)

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by the tables in /migrations.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) AppendUser(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, name, type)
        SELECT COUNT(*) + 1, $1::text, $2::text FROM users
        RETURNING id`
	return s.insertNext(ctx, "users", &user.ID, query, user.Name, user.Type)
}

func (s *postgresStore) AppendCase(ctx context.Context, c *domain.Case) error {
	const query = `
        INSERT INTO cases (id, owner_id, issue_description, status, created_at)
        SELECT COUNT(*) + 1, $1::bigint, $2::text, $3::text, $4::timestamptz FROM cases
        RETURNING id`
	return s.insertNext(ctx, "cases", &c.ID, query, c.OwnerID, c.IssueDescription, c.Status, c.CreatedAt)
}

func (s *postgresStore) AppendMessage(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (id, case_id, sender_id, content, created_at, attachment_file_name, attachment_file_url)
        SELECT COUNT(*) + 1, $1::bigint, $2::bigint, $3::text, $4::timestamptz, $5::text, $6::text FROM messages
        RETURNING id`
	var fileName, fileURL *string
	if msg.Attachment != nil {
		fileName = &msg.Attachment.FileName
		fileURL = &msg.Attachment.FileURL
	}
	return s.insertNext(ctx, "messages", &msg.ID, query, msg.CaseID, msg.SenderID, msg.Content, msg.CreatedAt, fileName, fileURL)
}

func (s *postgresStore) AppendAttachment(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO attachments (id, message_id, file_name, file_url, thumbnail_url)
        SELECT COUNT(*) + 1, $1::bigint, $2::text, $3::text, $4::text FROM attachments
        RETURNING id`
	return s.insertNext(ctx, "attachments", &attachment.ID, query,
		attachment.MessageID, attachment.FileName, attachment.FileURL, attachment.ThumbnailURL)
}

// insertNext runs an id-assigning insert while holding an exclusive table
// lock so COUNT(*)+1 cannot race with another writer.
func (s *postgresStore) insertNext(ctx context.Context, table string, id *int64, query string, args ...any) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, fmt.Sprintf("LOCK TABLE %s IN EXCLUSIVE MODE", table)); err != nil {
		return fmt.Errorf("lock %s: %w", table, err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(id); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return tx.Commit(ctx)
}

func (s *postgresStore) FindUser(ctx context.Context, id int64) (*domain.User, error) {
	const query = `SELECT id, name, type FROM users WHERE id=$1`
	var user domain.User
	if err := s.pool.QueryRow(ctx, query, id).Scan(&user.ID, &user.Name, &user.Type); err != nil {
		return nil, translateNoRows(err)
	}
	return &user, nil
}

func (s *postgresStore) FindCase(ctx context.Context, id int64) (*domain.Case, error) {
	const query = `
        SELECT id, owner_id, issue_description, status, created_at
        FROM cases WHERE id=$1`
	var c domain.Case
	if err := s.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.OwnerID,
		&c.IssueDescription,
		&c.Status,
		&c.CreatedAt,
	); err != nil {
		return nil, translateNoRows(err)
	}
	return &c, nil
}

func (s *postgresStore) FindMessage(ctx context.Context, id int64) (*domain.Message, error) {
	query := messageSelect + ` WHERE id=$1`
	msg, err := scanMessage(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateNoRows(err)
	}
	return msg, nil
}

func (s *postgresStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, type FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.User{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Type); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (s *postgresStore) ListCases(ctx context.Context, filter CaseFilter) ([]domain.Case, error) {
	query, args := buildCaseListQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Case{}
	for rows.Next() {
		var c domain.Case
		if err := rows.Scan(
			&c.ID,
			&c.OwnerID,
			&c.IssueDescription,
			&c.Status,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *postgresStore) ListMessages(ctx context.Context, filter MessageFilter) ([]domain.Message, error) {
	query, args := buildMessageListQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *msg)
	}
	return result, rows.Err()
}

func (s *postgresStore) ListAttachments(ctx context.Context, filter AttachmentFilter) ([]domain.Attachment, error) {
	query, args := buildAttachmentListQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Attachment{}
	for rows.Next() {
		var attachment domain.Attachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.MessageID,
			&attachment.FileName,
			&attachment.FileURL,
			&attachment.ThumbnailURL,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}

func (s *postgresStore) UpdateCaseStatus(ctx context.Context, id int64, status domain.CaseStatus) error {
	return s.execUpdate(ctx, `UPDATE cases SET status=$1 WHERE id=$2`, status, id)
}

func (s *postgresStore) UpdateMessageContent(ctx context.Context, id int64, content string) error {
	return s.execUpdate(ctx, `UPDATE messages SET content=$1 WHERE id=$2`, content, id)
}

func (s *postgresStore) SetAttachmentThumbnail(ctx context.Context, id int64, thumbnailURL string) error {
	return s.execUpdate(ctx, `UPDATE attachments SET thumbnail_url=$1 WHERE id=$2`, thumbnailURL, id)
}

func (s *postgresStore) execUpdate(ctx context.Context, query string, args ...any) error {
	cmd, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const messageSelect = `SELECT id, case_id, sender_id, content, created_at, attachment_file_name, attachment_file_url FROM messages`

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var msg domain.Message
	var fileName, fileURL *string
	if err := row.Scan(
		&msg.ID,
		&msg.CaseID,
		&msg.SenderID,
		&msg.Content,
		&msg.CreatedAt,
		&fileName,
		&fileURL,
	); err != nil {
		return nil, err
	}
	if fileName != nil && fileURL != nil {
		msg.Attachment = &domain.AttachmentInput{FileName: *fileName, FileURL: *fileURL}
	}
	return &msg, nil
}

func buildCaseListQuery(filter CaseFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	query := fmt.Sprintf(`SELECT id, owner_id, issue_description, status, created_at FROM cases WHERE %s ORDER BY id ASC`,
		strings.Join(clauses, " AND "))
	return query, args
}

func buildMessageListQuery(filter MessageFilter) (string, []any) {
	if filter.CaseID == nil {
		return messageSelect + ` ORDER BY id ASC`, nil
	}
	return messageSelect + ` WHERE case_id=$1 ORDER BY id ASC`, []any{*filter.CaseID}
}

func buildAttachmentListQuery(filter AttachmentFilter) (string, []any) {
	const base = `SELECT id, message_id, file_name, file_url, thumbnail_url FROM attachments`
	if filter.MessageID == nil {
		return base + ` ORDER BY id ASC`, nil
	}
	return base + ` WHERE message_id=$1 ORDER BY id ASC`, []any{*filter.MessageID}
}

func translateNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
