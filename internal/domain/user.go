// internal/domain/user.go
package domain

import (
	"strings"

	"github.com/google/uuid"
)

const userIDPrefix = "user_"

// UserIdentity is the opaque identifier that namespaces persisted state.
type UserIdentity string

// NewUserIdentity generates a random identifier, unique with high probability.
func NewUserIdentity() UserIdentity {
	return UserIdentity(userIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func (u UserIdentity) String() string { return string(u) }

// IsZero reports whether no identity has been established.
func (u UserIdentity) IsZero() bool { return strings.TrimSpace(string(u)) == "" }
