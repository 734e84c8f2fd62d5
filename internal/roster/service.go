// Package roster is the admin view over stored participants.
package roster

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"velo-registration/internal/metrics"
	"velo-registration/internal/models"
	"velo-registration/internal/store"
	"velo-registration/internal/util"
)

var csvHeader = []string{"id", "firstName", "lastName", "email", "club", "gender", "isNew", "createdAt"}

type Service struct {
	store   store.Store
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	loc     *time.Location
}

// NewService builds the roster service; loc is used for CSV timestamps.
func NewService(st store.Store, log logrus.FieldLogger, m *metrics.Metrics, loc *time.Location) *Service {
	return &Service{store: st, log: log, metrics: m, loc: loc}
}

func (s *Service) List(ctx context.Context) ([]models.Participant, error) {
	return s.store.ListAll(ctx)
}

func (s *Service) MarkSeen(ctx context.Context) error {
	if err := s.store.MarkAllSeen(ctx); err != nil {
		return err
	}
	s.metrics.RosterChange("mark_seen", 1)
	s.log.Info("all participants marked seen")
	return nil
}

// Remove deletes one participant; an unknown id is not an error.
func (s *Service) Remove(ctx context.Context, id int64) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.metrics.RosterChange("delete", 1)
	s.log.WithField("participant_id", id).Info("participant deleted")
	return nil
}

// RemoveMany deletes all ids in one transaction.
func (s *Service) RemoveMany(ctx context.Context, ids []int64) error {
	if err := s.store.DeleteMany(ctx, ids); err != nil {
		return err
	}
	s.metrics.RosterChange("delete", len(ids))
	s.log.WithField("count", len(ids)).Info("participants deleted")
	return nil
}

// WriteCSV writes the roster, newest first, with a header row.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer) error {
	participants, err := s.store.ListAll(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range participants {
		isNew := "0"
		if p.IsNew {
			isNew = "1"
		}
		row := []string{
			strconv.FormatInt(p.ID, 10),
			p.FirstName,
			p.LastName,
			p.Email,
			p.Club,
			p.Gender,
			isNew,
			util.LocalTimestamp(p.CreatedAt, s.loc),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
