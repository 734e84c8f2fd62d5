package roster

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velo-registration/internal/metrics"
	"velo-registration/internal/models"
	"velo-registration/internal/store"
)

type failingStore struct {
	store.Store
}

var errDown = errors.Join(store.ErrPersistence, errors.New("connection refused"))

func (failingStore) ListAll(context.Context) ([]models.Participant, error) { return nil, errDown }
func (failingStore) MarkAllSeen(context.Context) error                      { return errDown }
func (failingStore) DeleteByID(context.Context, int64) error                { return errDown }
func (failingStore) DeleteMany(context.Context, []int64) error              { return errDown }

func seeded(t *testing.T, names ...string) (*Service, *store.Memory, []models.Participant) {
	t.Helper()
	st := store.NewMemory()
	var out []models.Participant
	for _, n := range names {
		p, err := st.Insert(context.Background(), models.Submission{
			FirstName: n, LastName: "Petraitė", Email: n + "@x.lt", Gender: "Moteris",
		})
		require.NoError(t, err)
		out = append(out, p)
	}
	log, _ := test.NewNullLogger()
	return NewService(st, log, metrics.New(), nil), st, out
}

func TestListAndMarkSeen(t *testing.T) {
	svc, _, _ := seeded(t, "Ona", "Rūta")
	ctx := context.Background()

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, p := range all {
		assert.True(t, p.IsNew)
	}

	require.NoError(t, svc.MarkSeen(ctx))

	all, err = svc.List(ctx)
	require.NoError(t, err)
	for _, p := range all {
		assert.False(t, p.IsNew)
	}
}

func TestRemoveAbsentID(t *testing.T) {
	svc, _, _ := seeded(t, "Ona")
	ctx := context.Background()

	require.NoError(t, svc.Remove(ctx, 42))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRemoveMany(t *testing.T) {
	svc, _, ps := seeded(t, "Ona", "Rūta", "Eglė")
	ctx := context.Background()

	require.NoError(t, svc.RemoveMany(ctx, []int64{ps[0].ID, ps[1].ID}))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, ps[2].ID, all[0].ID)
}

func TestWriteCSV(t *testing.T) {
	svc, _, _ := seeded(t, "Ona", "Rūta")

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(context.Background(), &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])

	ids := []string{rows[1][0], rows[2][0]}
	assert.ElementsMatch(t, []string{"1", "2"}, ids)
	for _, row := range rows[1:] {
		assert.Equal(t, "Petraitė", row[2])
		assert.Equal(t, "1", row[6])
		assert.Len(t, row[7], len("2006-01-02 15:04:05"))
	}
}

func TestStoreFailuresPropagate(t *testing.T) {
	log, _ := test.NewNullLogger()
	svc := NewService(failingStore{}, log, nil, nil)
	ctx := context.Background()

	_, err := svc.List(ctx)
	assert.ErrorIs(t, err, store.ErrPersistence)
	assert.ErrorIs(t, svc.MarkSeen(ctx), store.ErrPersistence)
	assert.ErrorIs(t, svc.Remove(ctx, 1), store.ErrPersistence)
	assert.ErrorIs(t, svc.RemoveMany(ctx, []int64{1, 2}), store.ErrPersistence)
	assert.ErrorIs(t, svc.WriteCSV(ctx, &bytes.Buffer{}), store.ErrPersistence)
}
