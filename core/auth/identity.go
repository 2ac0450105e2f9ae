package auth

import "context"

// Identity is the caller resolved from a verified bearer token. It is
// attached to the request context once by the access middleware and
// consumed read-only everywhere downstream.
type Identity struct {
	Subject string `json:"sub"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Label picks the friendliest available display label for audit and
// attribution fields.
func (id *Identity) Label() string {
	switch {
	case id == nil:
		return "user"
	case id.Email != "":
		return id.Email
	case id.Name != "":
		return id.Name
	case id.Subject != "":
		return id.Subject
	default:
		return "user"
	}
}

type contextKey string

const identityContextKey contextKey = "readyroom_identity"

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	return id, ok
}
