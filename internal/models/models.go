package models

import (
	"encoding/json"
	"time"
)

// Participant is one registration record as stored in the participants table.
type Participant struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Club      string
	Gender    string
	IsNew     bool
	CreatedAt time.Time
}

// Submission is what the public form sends.
type Submission struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Club      string `json:"club"`
	Gender    string `json:"gender"`
}

// participantJSON is the wire shape the UI was built against: isNew is 1/0.
type participantJSON struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Club      string    `json:"club"`
	Gender    string    `json:"gender"`
	IsNew     int       `json:"isNew"`
	CreatedAt time.Time `json:"createdAt"`
}

func (p Participant) MarshalJSON() ([]byte, error) {
	isNew := 0
	if p.IsNew {
		isNew = 1
	}
	return json.Marshal(participantJSON{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Club:      p.Club,
		Gender:    p.Gender,
		IsNew:     isNew,
		CreatedAt: p.CreatedAt,
	})
}

func (p *Participant) UnmarshalJSON(data []byte) error {
	var raw participantJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Participant{
		ID:        raw.ID,
		FirstName: raw.FirstName,
		LastName:  raw.LastName,
		Email:     raw.Email,
		Club:      raw.Club,
		Gender:    raw.Gender,
		IsNew:     raw.IsNew != 0,
		CreatedAt: raw.CreatedAt,
	}
	return nil
}

// EmailRequest is the admin "write to participants" form.
type EmailRequest struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Message    string   `json:"message"`
}

// BulkDeleteRequest carries the ids selected in the admin table.
type BulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}
