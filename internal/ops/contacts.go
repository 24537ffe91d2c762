package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/tradehand/tradehand/internal/contacts"
	"github.com/tradehand/tradehand/internal/db"
	"github.com/tradehand/tradehand/internal/errors"
)

// CreateContactInput contains parameters for the CreateContact operation.
type CreateContactInput struct {
	UserID string
	Name   string
	Phone  *string
	Email  *string
	Kind   string
	Notes  string
	Now    time.Time // zero means wall-clock now
}

// CreateContact adds a contact to the owner's directory. Used directly and
// by the review flow's "create new" disambiguation choice.
func CreateContact(ctx context.Context, database *sql.DB, input CreateContactInput) (*contacts.Contact, error) {
	if input.UserID == "" {
		return nil, errors.NewValidation("user id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewValidation("contact name is required")
	}
	now := nowOrDefault(input.Now)

	id, err := newID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	c := contacts.Contact{
		ID:        id,
		UserID:    input.UserID,
		Name:      name,
		Phone:     cleanOptionalString(input.Phone),
		Email:     cleanOptionalString(input.Email),
		Kind:      strings.TrimSpace(input.Kind),
		Notes:     strings.TrimSpace(input.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.InsertContact(ctx, database, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// SearchContactsInput contains parameters for the SearchContacts operation.
type SearchContactsInput struct {
	UserID string
	Query  string
	Limit  int
}

// SearchContactsOutput contains the result of the SearchContacts operation.
// With a query, Match carries the ranked candidates; without one, Contacts
// carries the whole directory.
type SearchContactsOutput struct {
	Match    *contacts.Match    `json:"match,omitempty"`
	Contacts []contacts.Contact `json:"contacts,omitempty"`
}

// SearchContacts serves the disambiguation step: ranked candidates for a
// free-text name, or the full directory when no query is given.
func SearchContacts(ctx context.Context, database *sql.DB, input SearchContactsInput) (*SearchContactsOutput, error) {
	if input.UserID == "" {
		return nil, errors.NewValidation("user id is required")
	}

	directory, err := db.ListContacts(ctx, database, input.UserID)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(input.Query)
	if query == "" {
		return &SearchContactsOutput{Contacts: directory}, nil
	}
	m := contacts.Rank(query, directory, input.Limit)
	return &SearchContactsOutput{Match: &m}, nil
}

// cleanOptionalString trims an optional string and drops it if empty.
func cleanOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
