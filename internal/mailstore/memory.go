package mailstore

import (
	"context"
	"fmt"
	"sync"

	"ladle/internal/engine"
)

// Memory keeps mail in process memory. Suitable for tests and single-node
// development setups.
type Memory struct {
	mu    sync.Mutex
	boxes map[string][]engine.MailMessage
}

func NewMemory() *Memory {
	return &Memory{boxes: make(map[string][]engine.MailMessage)}
}

func (m *Memory) Deliver(_ context.Context, msgs []engine.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range msgs {
		m.boxes[msg.PlayerID] = append(m.boxes[msg.PlayerID], msg)
	}
	return nil
}

func (m *Memory) ListForPlayer(_ context.Context, playerID string) ([]engine.MailMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	box := m.boxes[playerID]
	out := make([]engine.MailMessage, len(box))
	copy(out, box)
	return out, nil
}

func (m *Memory) MarkRead(_ context.Context, playerID, mailID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	box := m.boxes[playerID]
	for i := range box {
		if box[i].ID == mailID {
			box[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("mail %q: %w", mailID, engine.ErrNotFound)
}
