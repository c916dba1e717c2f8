package local

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-session"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultTokenTTL is how long a minted identity token stays exchangeable.
	DefaultTokenTTL = 5 * time.Minute

	// DefaultIssuer is the iss claim on minted identity tokens.
	DefaultIssuer = "local"

	// MinPasswordLength is the weakest password CreateAccount accepts.
	MinPasswordLength = 8
)

// Config configures the local identity provider.
type Config struct {
	// SigningKey signs the identity tokens this provider mints.
	SigningKey []byte

	// Issuer overrides the iss claim. Default: "local".
	Issuer string

	// TokenTTL overrides the identity token lifetime. Default: 5 minutes.
	TokenTTL time.Duration

	// BcryptCost overrides the hashing cost. Default: bcrypt.DefaultCost.
	BcryptCost int

	Logger session.Logger
}

// Provider verifies and creates credentials against a local table.
type Provider struct {
	db         bun.IDB
	signingKey []byte
	issuer     string
	ttl        time.Duration
	cost       int
	logger     session.Logger
}

var _ session.IdentityProvider = (*Provider)(nil)

// New creates a local identity provider.
func New(db bun.IDB, cfg Config) (*Provider, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("local provider requires a signing key", errors.CategoryBadInput)
	}

	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	cost := cfg.BcryptCost
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}

	logger := cfg.Logger
	if logger == nil {
		logger = session.NewDefaultLogger()
	}

	return &Provider{
		db:         db,
		signingKey: cfg.SigningKey,
		issuer:     issuer,
		ttl:        ttl,
		cost:       cost,
		logger:     logger,
	}, nil
}

// VerifyCredentials checks the email and password against the stored hash
// and mints an identity token. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (p *Provider) VerifyCredentials(ctx context.Context, email, password string) (session.IdentityToken, error) {
	email = session.NormalizeEmail(email)

	rec, err := p.getByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", session.ErrInvalidCredentials
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to look up credential record")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return "", session.ErrInvalidCredentials
	}

	return p.mintIdentityToken(rec.ID.String(), rec.Email)
}

// CreateAccount provisions a credential record and mints an identity token
// for the new account. The insert is atomic under concurrent registration;
// the loser of the race gets the email-in-use rejection.
func (p *Provider) CreateAccount(ctx context.Context, email, password string) (session.IdentityToken, error) {
	email = session.NormalizeEmail(email)
	if email == "" {
		return "", errors.New("email is required", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	if len(password) < MinPasswordLength {
		return "", session.ErrWeakCredential
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	now := time.Now()
	rec := &AccountCredential{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if id, err := hashid.NewUUID(email); err == nil {
		rec.ID = id
	} else {
		rec.ID = uuid.New()
	}

	// The id derives from the email, so a duplicate registration collides on
	// both columns; an untargeted conflict clause absorbs either.
	res, err := p.db.NewInsert().
		Model(rec).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to create credential record")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return "", session.ErrEmailAlreadyInUse
	}

	p.logger.Info("account created", "email", email)

	return p.mintIdentityToken(rec.ID.String(), rec.Email)
}

// Verifier returns a verifier for the identity tokens this provider mints.
// Wire it into the session issuer so the exchange stays local.
func (p *Provider) Verifier() session.IdentityTokenVerifier {
	return session.IdentityTokenVerifierFunc(func(raw session.IdentityToken) (session.IdentityClaims, error) {
		token, err := jwt.ParseWithClaims(string(raw), &session.SessionClaims{}, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return p.signingKey, nil
		}, jwt.WithIssuer(p.issuer))

		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return nil, session.ErrTokenExpired
			}
			return nil, errors.Wrap(err, session.ErrTokenMalformed.Category, session.ErrTokenMalformed.Message).
				WithTextCode(session.ErrTokenMalformed.TextCode)
		}

		claims, ok := token.Claims.(*session.SessionClaims)
		if !ok || !token.Valid {
			return nil, session.ErrTokenMalformed
		}

		return claims, nil
	})
}

func (p *Provider) getByEmail(ctx context.Context, email string) (*AccountCredential, error) {
	rec := &AccountCredential{}
	err := p.db.NewSelect().
		Model(rec).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (p *Provider) mintIdentityToken(subject, email string) (session.IdentityToken, error) {
	now := time.Now()
	claims := &session.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
		UserEmail: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign identity token")
	}

	return session.IdentityToken(signed), nil
}
