// Package mailstore persists outbound MailMessages on behalf of the engine.
// The engine only ever writes through the Deliver port; reading mail back is
// a client concern served over the API.
package mailstore

import (
	"context"

	"ladle/internal/engine"
)

type Store interface {
	Deliver(ctx context.Context, msgs []engine.MailMessage) error
	ListForPlayer(ctx context.Context, playerID string) ([]engine.MailMessage, error)
	MarkRead(ctx context.Context, playerID, mailID string) error
}
