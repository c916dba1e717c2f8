package session

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profiles is the Account Provisioner: an idempotent, create-if-absent store
// for user profiles keyed by the provider subject.
type Profiles interface {
	repository.Repository[*UserProfile]

	GetBySubject(ctx context.Context, subject string) (*UserProfile, error)
	EnsureProfile(ctx context.Context, subject string, hint ProfileHint) (*UserProfile, error)
}

type profiles struct {
	repository.Repository[*UserProfile]
	db *bun.DB
}

var (
	_ Profiles                            = (*profiles)(nil)
	_ repository.Repository[*UserProfile] = (*profiles)(nil)
	_ Provisioner                         = (*profiles)(nil)
)

func NewProfilesRepository(db *bun.DB) Profiles {
	repo := repository.NewRepository[*UserProfile](db, repository.ModelHandlers[*UserProfile]{
		NewRecord: func() *UserProfile { return &UserProfile{} },
		GetID: func(p *UserProfile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *UserProfile, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "subject"
		},
	})

	return &profiles{
		Repository: repo,
		db:         db,
	}
}

func (p *profiles) GetBySubject(ctx context.Context, subject string) (*UserProfile, error) {
	record := &UserProfile{}
	err := p.db.NewSelect().
		Model(record).
		Where("?TableAlias.subject = ?", subject).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"subject": subject,
				})
		}
		return nil, err
	}

	return record, nil
}

// EnsureProfile returns the profile for subject, creating it from the hint
// when absent. Creation uses an insert with a conflict clause so concurrent
// callers race safely: exactly one row wins and everyone reads it back.
//
// Existing profiles are returned unchanged. Later hints never overwrite
// stored fields; an attacker replaying a login cannot rename a user.
func (p *profiles) EnsureProfile(ctx context.Context, subject string, hint ProfileHint) (*UserProfile, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, errors.New("profile subject is required", errors.CategoryBadInput)
	}

	existing, err := p.GetBySubject(ctx, subject)
	if err == nil {
		return existing, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up user profile")
	}

	if strings.TrimSpace(hint.Name) == "" {
		return nil, ErrIncompleteProfile
	}

	record := &UserProfile{
		Subject: subject,
		Name:    strings.TrimSpace(hint.Name),
		Email:   NormalizeEmail(hint.Email),
	}
	prepareProfileDefaults(record)

	// No conflict target: the row can collide on subject or on email, and
	// either way the losing insert must be silent so the read back decides.
	_, err = p.db.NewInsert().
		Model(record).
		On("CONFLICT DO NOTHING").
		Exec(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryConflict, "could not create user profile")
	}

	// Read back rather than trusting our own record: a concurrent caller may
	// have won the insert, and all callers must observe the same row.
	return p.GetBySubject(ctx, subject)
}

// NormalizeEmail lower-cases and trims an email so uniqueness checks are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func prepareProfileDefaults(record *UserProfile) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		// Deterministic id derived from the provider subject keeps retried
		// creations from minting mismatched rows.
		if id, err := hashid.NewUUID(record.Subject); err == nil {
			record.ID = id
		} else {
			record.ID = uuid.New()
		}
	}
}
