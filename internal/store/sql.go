package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"velo-registration/internal/models"
)

const table = "participants"

var columns = []string{"id", "first_name", "last_name", "email", "club", "gender", "is_new", "created_at"}

type dialect struct {
	name        string
	placeholder sq.PlaceholderFormat
	schema      []string
}

// SQLStore keeps participants in a relational database. SQLite and
// PostgreSQL share it; only the placeholders and the DDL differ.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	sb      sq.StatementBuilderType
	now     func() time.Time
}

func newSQLStore(db *sql.DB, d dialect) *SQLStore {
	return &SQLStore{
		db:      db,
		dialect: d,
		sb:      sq.StatementBuilder.PlaceholderFormat(d.placeholder),
		now:     now,
	}
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return persistence("migrate "+s.dialect.name, err)
		}
	}
	return nil
}

func (s *SQLStore) Insert(ctx context.Context, sub models.Submission) (models.Participant, error) {
	p := models.Participant{
		FirstName: sub.FirstName,
		LastName:  sub.LastName,
		Email:     sub.Email,
		Club:      sub.Club,
		Gender:    sub.Gender,
		IsNew:     true,
		CreatedAt: s.now().Truncate(time.Microsecond),
	}

	q := s.sb.Insert(table).
		Columns("first_name", "last_name", "email", "club", "gender", "is_new", "created_at").
		Values(p.FirstName, p.LastName, p.Email, p.Club, p.Gender, p.IsNew, p.CreatedAt).
		Suffix("RETURNING id")
	query, args, err := q.ToSql()
	if err != nil {
		return models.Participant{}, err
	}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&p.ID); err != nil {
		return models.Participant{}, persistence("insert participant", err)
	}
	return p, nil
}

func (s *SQLStore) ListAll(ctx context.Context) ([]models.Participant, error) {
	query, args, err := s.sb.Select(columns...).
		From(table).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistence("list participants", err)
	}
	defer rows.Close()

	out := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Club, &p.Gender, &p.IsNew, &p.CreatedAt); err != nil {
			return nil, persistence("scan participant", err)
		}
		p.CreatedAt = p.CreatedAt.UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("list participants", err)
	}
	return out, nil
}

func (s *SQLStore) MarkAllSeen(ctx context.Context) error {
	query, args, err := s.sb.Update(table).Set("is_new", false).ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return persistence("mark seen", err)
	}
	return nil
}

func (s *SQLStore) DeleteByID(ctx context.Context, id int64) error {
	query, args, err := s.deleteQuery(id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return persistence("delete participant", err)
	}
	return nil
}

func (s *SQLStore) DeleteMany(ctx context.Context, ids []int64) (err error) {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistence("begin bulk delete", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	for _, id := range ids {
		query, args, qErr := s.deleteQuery(id)
		if qErr != nil {
			return qErr
		}
		if _, execErr := tx.ExecContext(ctx, query, args...); execErr != nil {
			return persistence("bulk delete", execErr)
		}
	}
	if cErr := tx.Commit(); cErr != nil {
		return persistence("commit bulk delete", cErr)
	}
	return nil
}

func (s *SQLStore) deleteQuery(id int64) (string, []interface{}, error) {
	return s.sb.Delete(table).Where(sq.Eq{"id": id}).ToSql()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// ping retries until the database answers or wait runs out.
func ping(ctx context.Context, db *sql.DB, wait time.Duration) error {
	deadline := time.Now().Add(wait)
	for {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := db.PingContext(pctx)
		cancel()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return persistence("connect", err)
		}
		select {
		case <-ctx.Done():
			return persistence("connect", ctx.Err())
		case <-time.After(time.Second):
		}
	}
}
