package local

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountCredential is the stored credential record. The password never
// leaves this table as anything but a bcrypt hash.
type AccountCredential struct {
	bun.BaseModel `bun:"table:account_credentials,alias:cred"`

	ID           uuid.UUID `bun:"id,pk,notnull,type:uuid" json:"id"`
	Email        string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`

	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}
