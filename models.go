package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserProfile is the durable profile record created the first time a
// provider subject authenticates. Owned by the Profiles repository; the
// issuer only reads and creates through it.
type UserProfile struct {
	bun.BaseModel `bun:"table:user_profiles,alias:prof"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Subject       string     `bun:"subject,notnull,unique" json:"subject,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
