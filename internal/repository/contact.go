package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daffodils/florist-api/internal/model"
)

type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Contact, error)
	List(ctx context.Context, f ContactFilter) ([]model.Contact, int, error)
	Update(ctx context.Context, contact *model.Contact) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const contactColumns = `id, name, email, phone, subject, message, inquiry_type, status,
	priority, admin_notes, ip_address, user_agent, submission_id,
	email_sent, email_sent_at, email_message_id, responded_by, created_at, updated_at`

type pgContactRepo struct{ pool *pgxpool.Pool }

func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &pgContactRepo{pool: pool}
}

func (r *pgContactRepo) Create(ctx context.Context, contact *model.Contact) error {
	contact.ID = uuid.New()
	err := queryFrom(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO contacts (id, name, email, phone, subject, message, inquiry_type, status,
			priority, admin_notes, ip_address, user_agent, submission_id,
			email_sent, email_sent_at, email_message_id, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,NOW(),NOW())
		 RETURNING created_at, updated_at`,
		contact.ID, contact.Name, contact.Email, contact.Phone, contact.Subject, contact.Message,
		contact.InquiryType, contact.Status, contact.Priority, contact.AdminNotes,
		contact.IPAddress, contact.UserAgent, contact.SubmissionID,
		contact.EmailSent, contact.EmailSentAt, contact.EmailMsgID,
	).Scan(&contact.CreatedAt, &contact.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

func (r *pgContactRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	ct := &model.Contact{}
	err := scanContact(queryFrom(ctx, r.pool).QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id), ct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return ct, nil
}

func (r *pgContactRepo) List(ctx context.Context, f ContactFilter) ([]model.Contact, int, error) {
	where := `WHERE ($1 = '' OR status = $1) AND ($2 = '' OR inquiry_type = $2)`
	args := []any{f.Status, f.InquiryType}

	var total int
	if err := queryFrom(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM contacts `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	rows, err := queryFrom(ctx, r.pool).Query(ctx,
		`SELECT `+contactColumns+` FROM contacts `+where+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var ct model.Contact
		if err := scanContact(rows, &ct); err != nil {
			return nil, 0, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, ct)
	}
	return contacts, total, rows.Err()
}

func (r *pgContactRepo) Update(ctx context.Context, contact *model.Contact) error {
	err := queryFrom(ctx, r.pool).QueryRow(ctx,
		`UPDATE contacts SET status=$2, priority=$3, admin_notes=$4, responded_by=$5,
			email_sent=$6, email_sent_at=$7, email_message_id=$8, updated_at=NOW()
		 WHERE id=$1 RETURNING updated_at`,
		contact.ID, contact.Status, contact.Priority, contact.AdminNotes, contact.RespondedBy,
		contact.EmailSent, contact.EmailSentAt, contact.EmailMsgID,
	).Scan(&contact.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update contact: %w", err)
	}
	return nil
}

func (r *pgContactRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := queryFrom(ctx, r.pool).Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanContact(row pgx.Row, ct *model.Contact) error {
	return row.Scan(
		&ct.ID, &ct.Name, &ct.Email, &ct.Phone, &ct.Subject, &ct.Message,
		&ct.InquiryType, &ct.Status, &ct.Priority, &ct.AdminNotes,
		&ct.IPAddress, &ct.UserAgent, &ct.SubmissionID,
		&ct.EmailSent, &ct.EmailSentAt, &ct.EmailMsgID, &ct.RespondedBy,
		&ct.CreatedAt, &ct.UpdatedAt,
	)
}
