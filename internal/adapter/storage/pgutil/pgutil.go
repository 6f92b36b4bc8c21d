package pgutil

import (
	"database/sql"
	"errors"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leporo/sqlf"
	"github.com/r3labs/diff"
	"strings"
	"sync"
)

type BasePostgresStorage struct {
	DB     storage.DBContext
	seenMu sync.Mutex
	seen   map[string]domain.Evented
}

func NewBasePostgresStorage(db storage.DBContext) *BasePostgresStorage {
	return &BasePostgresStorage{
		DB:   db,
		seen: make(map[string]domain.Evented),
	}
}

func (s *BasePostgresStorage) CollectEvents() []domain.Event {
	s.seenMu.Lock()
	var events []domain.Event
	for _, a := range s.seen {
		events = append(events, a.PopEvents()...)
	}
	s.seenMu.Unlock()
	s.clearSeen()
	return events
}

func (s *BasePostgresStorage) Close() {
	s.clearSeen()
}

func (s *BasePostgresStorage) MarkSeen(id string, a domain.Evented) {
	s.seenMu.Lock()
	s.seen[id] = a
	s.seenMu.Unlock()
}

func (s *BasePostgresStorage) clearSeen() {
	s.seenMu.Lock()
	s.seen = make(map[string]domain.Evented)
	s.seenMu.Unlock()
}

// ViolatesConstraint reports whether err is an integrity violation of the
// named constraint. sqlite errors carry no constraint name, so they match on
// the message, which lists the offending columns.
func ViolatesConstraint(err error, constraintName string, columns ...string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) &&
			pgErr.ConstraintName == constraintName
	}

	if err == nil || !strings.Contains(err.Error(), "constraint failed") {
		return false
	}
	for _, c := range columns {
		if !strings.Contains(err.Error(), c) {
			return false
		}
	}
	return true
}

// MakeUpdateQuery turns a flat changelog into SET clauses. Field paths are
// the column names given by the `diff` struct tags.
func MakeUpdateQuery(stmt *sqlf.Stmt, updates diff.Changelog) *sqlf.Stmt {
	for _, upd := range updates {
		if upd.Type != "update" {
			panic("invalid update type " + upd.Type)
		}
		if len(upd.Path) > 1 {
			panic("cannot process updates in nested structures")
		}

		stmt = stmt.Set(upd.Path[0], upd.To)
	}
	return stmt
}

func AssertUpdated(res sql.Result, err error, notUpdatedError error) error {
	if err != nil {
		return storage.InternalError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return storage.InternalError(err)
	}

	if affected == 0 {
		return notUpdatedError
	}
	return nil
}
