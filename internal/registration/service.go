// Package registration accepts public signups.
package registration

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"velo-registration/internal/metrics"
	"velo-registration/internal/models"
	"velo-registration/internal/store"
)

// Sink receives a best-effort copy of every stored registration.
type Sink interface {
	Name() string
	Mirror(ctx context.Context, p models.Participant) error
}

type Service struct {
	store   store.Store
	sinks   []Sink
	timeout time.Duration
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

func NewService(st store.Store, sinks []Sink, timeout time.Duration, log logrus.FieldLogger, m *metrics.Metrics) *Service {
	return &Service{
		store:   st,
		sinks:   sinks,
		timeout: timeout,
		log:     log,
		metrics: m,
	}
}

// Register validates and stores a submission, then copies it to every sink.
// Sink failures are logged and do not affect the result.
func (s *Service) Register(ctx context.Context, sub models.Submission) (models.Participant, error) {
	sub = normalize(sub)
	if err := validate(sub); err != nil {
		s.metrics.Registration("invalid")
		return models.Participant{}, err
	}

	p, err := s.store.Insert(ctx, sub)
	if err != nil {
		s.metrics.Registration("error")
		return models.Participant{}, err
	}
	s.metrics.Registration("ok")
	s.log.WithFields(logrus.Fields{"participant_id": p.ID, "email": p.Email}).Info("participant registered")

	s.mirror(ctx, p)
	return p, nil
}

// MirrorBudget is the longest time Register can spend on sinks: they run one
// after another, each under its own timeout.
func (s *Service) MirrorBudget() time.Duration {
	return time.Duration(len(s.sinks)) * s.timeout
}

func (s *Service) mirror(ctx context.Context, p models.Participant) {
	// Sinks run to their own timeout even if the client has gone away.
	ctx = context.WithoutCancel(ctx)
	for _, sink := range s.sinks {
		sctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := sink.Mirror(sctx, p)
		cancel()
		if err == nil {
			continue
		}
		ierr := &IntegrationError{Sink: sink.Name(), Err: err}
		s.metrics.MirrorFailure(sink.Name())
		s.log.WithError(ierr).WithField("participant_id", p.ID).Warn("mirror failed")
	}
}

func normalize(sub models.Submission) models.Submission {
	return models.Submission{
		FirstName: strings.TrimSpace(sub.FirstName),
		LastName:  strings.TrimSpace(sub.LastName),
		Email:     strings.TrimSpace(sub.Email),
		Club:      strings.TrimSpace(sub.Club),
		Gender:    strings.TrimSpace(sub.Gender),
	}
}

func validate(sub models.Submission) error {
	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{"firstName", sub.FirstName},
		{"lastName", sub.LastName},
		{"email", sub.Email},
		{"gender", sub.Gender},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}
