package postgres

import (
	"context"
	"fmt"
	"strings"

	"leadscout/internal/domain/entity"
	"leadscout/internal/repository"
)

type ContactRepo struct{ db DB }

func NewContactRepo(db DB) repository.ContactRepository {
	return &ContactRepo{db: db}
}

func (repo *ContactRepo) BulkCreate(ctx context.Context, contacts []*entity.Contact) error {
	if len(contacts) == 0 {
		return nil
	}

	// One multi-row insert; contact batches are at most a handful of rows.
	var b strings.Builder
	b.WriteString(`
INSERT INTO contacts (lead_id, user_id, name, title, email, phone, company, contact_type)
VALUES `)
	args := make([]any, 0, len(contacts)*8)
	for i, c := range contacts {
		if i > 0 {
			b.WriteString(", ")
		}
		base := i * 8
		fmt.Fprintf(&b, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8)
		args = append(args, c.LeadID, c.UserID, c.Name, c.Title, c.Email, c.Phone, c.Company, c.ContactType)
	}

	if _, err := repo.db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("BulkCreate: %w", err)
	}
	return nil
}

func (repo *ContactRepo) ListByLead(ctx context.Context, leadID int64) ([]*entity.Contact, error) {
	const query = `
SELECT id, lead_id, user_id, name, title, email, phone, company, contact_type
FROM contacts
WHERE lead_id = $1
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("ListByLead: %w", err)
	}
	defer func() { _ = rows.Close() }()

	contacts := make([]*entity.Contact, 0, 4)
	for rows.Next() {
		var c entity.Contact
		if err := rows.Scan(&c.ID, &c.LeadID, &c.UserID, &c.Name, &c.Title,
			&c.Email, &c.Phone, &c.Company, &c.ContactType); err != nil {
			return nil, fmt.Errorf("ListByLead: %w", err)
		}
		contacts = append(contacts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByLead: %w", err)
	}
	return contacts, nil
}
