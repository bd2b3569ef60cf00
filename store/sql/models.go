package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type preferenceRecord struct {
	bun.BaseModel `bun:"table:system_auth_preferences,alias:sap"`

	ID        string    `bun:"id,pk"`
	Key       string    `bun:"preference_key,notnull"`
	Value     bool      `bun:"value,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
