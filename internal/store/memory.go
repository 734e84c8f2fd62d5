package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"velo-registration/internal/models"
)

// Memory is a process-local store for tests and throwaway runs.
type Memory struct {
	mu           sync.Mutex
	participants map[int64]models.Participant
	nextID       int64
	now          func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		participants: map[int64]models.Participant{},
		nextID:       1,
		now:          now,
	}
}

func (m *Memory) Insert(_ context.Context, s models.Submission) (models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := models.Participant{
		ID:        m.nextID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Club:      s.Club,
		Gender:    s.Gender,
		IsNew:     true,
		CreatedAt: m.now(),
	}
	m.nextID++
	m.participants[p.ID] = p
	return p, nil
}

func (m *Memory) ListAll(_ context.Context) ([]models.Participant, error) {
	m.mu.Lock()
	out := make([]models.Participant, 0, len(m.participants))
	for _, p := range m.participants {
		out = append(out, p)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *Memory) MarkAllSeen(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.participants {
		p.IsNew = false
		m.participants[id] = p
	}
	return nil
}

func (m *Memory) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.participants, id)
	return nil
}

// DeleteMany holds the lock for the whole batch, so it is all-or-nothing.
func (m *Memory) DeleteMany(_ context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.participants, id)
	}
	return nil
}

func (m *Memory) Close() error { return nil }
