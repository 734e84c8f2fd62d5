package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velo-registration/internal/metrics"
	"velo-registration/internal/models"
	"velo-registration/internal/store"
)

type recordingSink struct {
	name string
	err  error
	got  []models.Participant
	wait bool
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Mirror(ctx context.Context, p models.Participant) error {
	s.got = append(s.got, p)
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.wait {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

type brokenStore struct {
	store.Store
}

func (brokenStore) Insert(context.Context, models.Submission) (models.Participant, error) {
	return models.Participant{}, errors.Join(store.ErrPersistence, errors.New("disk full"))
}

func newService(t *testing.T, st store.Store, sinks ...Sink) (*Service, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	return NewService(st, sinks, 50*time.Millisecond, log, metrics.New()), hook
}

func valid() models.Submission {
	return models.Submission{FirstName: "Jonas", LastName: "Jonaitis", Email: "j@x.lt", Gender: "Vyras"}
}

func TestRegisterStoresAndMirrors(t *testing.T) {
	st := store.NewMemory()
	sink := &recordingSink{name: "sheets"}
	svc, _ := newService(t, st, sink)

	sub := valid()
	sub.FirstName = "  Jonas "
	sub.Club = " Velo "
	p, err := svc.Register(context.Background(), sub)
	require.NoError(t, err)

	assert.Positive(t, p.ID)
	assert.Equal(t, "Jonas", p.FirstName)
	assert.Equal(t, "Velo", p.Club)
	assert.True(t, p.IsNew)

	all, err := st.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, p.ID, all[0].ID)

	require.Len(t, sink.got, 1)
	assert.Equal(t, p.ID, sink.got[0].ID)
}

func TestRegisterClubOptional(t *testing.T) {
	svc, _ := newService(t, store.NewMemory())

	p, err := svc.Register(context.Background(), valid())
	require.NoError(t, err)
	assert.Equal(t, "", p.Club)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*models.Submission)
		field  string
	}{
		{"first name", func(s *models.Submission) { s.FirstName = "" }, "firstName"},
		{"last name", func(s *models.Submission) { s.LastName = "   " }, "lastName"},
		{"email", func(s *models.Submission) { s.Email = "" }, "email"},
		{"gender", func(s *models.Submission) { s.Gender = "" }, "gender"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.NewMemory()
			sink := &recordingSink{name: "sheets"}
			svc, _ := newService(t, st, sink)

			sub := valid()
			tt.modify(&sub)
			_, err := svc.Register(context.Background(), sub)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, []string{tt.field}, verr.Fields)

			all, err := st.ListAll(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all, "nothing stored")
			assert.Empty(t, sink.got, "nothing mirrored")
		})
	}
}

func TestRegisterReportsAllMissingFields(t *testing.T) {
	svc, _ := newService(t, store.NewMemory())

	_, err := svc.Register(context.Background(), models.Submission{Club: "Velo"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"firstName", "lastName", "email", "gender"}, verr.Fields)
	assert.Equal(t, "missing required fields: firstName, lastName, email, gender", verr.Error())
}

func TestRegisterSinkFailureIsNotFatal(t *testing.T) {
	st := store.NewMemory()
	failing := &recordingSink{name: "sheets", err: errors.New("quota exceeded")}
	after := &recordingSink{name: "telegram"}
	svc, hook := newService(t, st, failing, after)

	p, err := svc.Register(context.Background(), valid())
	require.NoError(t, err)
	assert.Positive(t, p.ID)

	all, err := st.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1, "insert is not rolled back")
	assert.Len(t, after.got, 1, "later sinks still run")

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "mirror failed" {
			warned = true
			var ierr *IntegrationError
			require.ErrorAs(t, e.Data[logrus.ErrorKey].(error), &ierr)
			assert.Equal(t, "sheets", ierr.Sink)
		}
	}
	assert.True(t, warned)
}

func TestRegisterSinkIsBoundedByTimeout(t *testing.T) {
	slow := &recordingSink{name: "sheets", wait: true}
	svc, _ := newService(t, store.NewMemory(), slow)

	start := time.Now()
	_, err := svc.Register(context.Background(), valid())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRegisterSinkRunsAfterClientCancel(t *testing.T) {
	sink := &recordingSink{name: "sheets"}
	svc, hook := newService(t, store.NewMemory(), sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, err := svc.Register(ctx, valid())
	require.NoError(t, err)
	require.Len(t, sink.got, 1)
	assert.Equal(t, p.ID, sink.got[0].ID)

	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, "mirror failed", e.Message)
	}
}

func TestRegisterPersistenceError(t *testing.T) {
	sink := &recordingSink{name: "sheets"}
	svc, _ := newService(t, brokenStore{}, sink)

	_, err := svc.Register(context.Background(), valid())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrPersistence)
	assert.Empty(t, sink.got)
}

func TestMirrorBudgetScalesWithSinks(t *testing.T) {
	none, _ := newService(t, store.NewMemory())
	assert.Zero(t, none.MirrorBudget())

	three, _ := newService(t, store.NewMemory(),
		&recordingSink{name: "sheets"}, &recordingSink{name: "telegram"}, &recordingSink{name: "webhook"})
	assert.Equal(t, 150*time.Millisecond, three.MirrorBudget())
}
