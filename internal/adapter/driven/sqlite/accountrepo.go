package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/vpsmonitor/internal/domain/model"
	"github.com/ericfisherdev/vpsmonitor/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AccountStore = (*AccountRepo)(nil)

const accountColumns = `id, name, ops, cookie, valid_until, ip, location, creation_date, cookie_status, update_time`

// AccountRepo is the SQLite implementation of the AccountStore port interface.
// Cookies are encrypted at rest when a key is configured.
type AccountRepo struct {
	db     *DB
	cipher cookieCipher
}

// NewAccountRepo creates a new AccountRepo. key must be 32 bytes for AES-256-GCM,
// or nil to store cookies in plaintext.
func NewAccountRepo(db *DB, key []byte) *AccountRepo {
	return &AccountRepo{db: db, cipher: cookieCipher{key: key}}
}

// ListAll returns every account, newest first.
func (r *AccountRepo) ListAll(ctx context.Context) ([]model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM vps ORDER BY id DESC`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		acct, err := r.scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

// GetByID returns the account with the given id, or nil, nil if it does not exist.
func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM vps WHERE id = ?`

	acct, err := r.scanAccount(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}

	return acct, nil
}

// Create inserts a new account with status Normal and no observations.
func (r *AccountRepo) Create(ctx context.Context, in model.NewAccount) (int64, error) {
	cookie, err := r.cipher.seal(in.Cookie)
	if err != nil {
		return 0, fmt.Errorf("encrypt cookie: %w", err)
	}

	const query = `INSERT INTO vps (name, ops, cookie, cookie_status) VALUES (?, ?, ?, ?)`
	res, err := r.db.Writer.ExecContext(ctx, query, in.Name, in.Ops, cookie, string(model.CookieStatusNormal))
	if err != nil {
		return 0, fmt.Errorf("create account %q: %w", in.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}
	return id, nil
}

// Update applies the non-nil fields of upd. An empty update is a no-op.
func (r *AccountRepo) Update(ctx context.Context, id int64, upd model.AccountUpdate) error {
	if upd.IsEmpty() {
		return nil
	}

	var sets []string
	var args []any
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Ops != nil {
		sets = append(sets, "ops = ?")
		args = append(args, *upd.Ops)
	}
	if upd.Cookie != nil {
		cookie, err := r.cipher.seal(*upd.Cookie)
		if err != nil {
			return fmt.Errorf("encrypt cookie: %w", err)
		}
		sets = append(sets, "cookie = ?")
		args = append(args, cookie)
	}
	args = append(args, id)

	query := `UPDATE vps SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := r.db.Writer.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update account %d: %w", id, err)
	}

	return requireAffected(res, id)
}

// Delete removes the account. Returns ErrAccountNotFound if it does not exist.
func (r *AccountRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM vps WHERE id = ?`

	res, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}

	return requireAffected(res, id)
}

// ApplyScrapeSuccess merges snap into the stored observations.
func (r *AccountRepo) ApplyScrapeSuccess(ctx context.Context, id int64, snap model.Snapshot) error {
	return r.applyObservation(ctx, id, func(a model.Account) model.Account {
		return a.WithSnapshot(snap)
	})
}

// ApplyScrapeFailure marks the account Invalid at observedAt.
func (r *AccountRepo) ApplyScrapeFailure(ctx context.Context, id int64, observedAt time.Time) error {
	return r.applyObservation(ctx, id, func(a model.Account) model.Account {
		return a.WithFailure(observedAt)
	})
}

// applyObservation reads the observational columns, runs merge over them, and
// writes the result back in a single transaction on the writer connection.
func (r *AccountRepo) applyObservation(ctx context.Context, id int64, merge func(model.Account) model.Account) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const selectQuery = `SELECT valid_until, ip, location, creation_date, cookie_status, update_time FROM vps WHERE id = ?`
	current, err := scanObservation(tx.QueryRowContext(ctx, selectQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("apply observation %d: %w", id, driven.ErrAccountNotFound)
	}
	if err != nil {
		return fmt.Errorf("load observation %d: %w", id, err)
	}
	current.ID = id

	next := merge(*current)

	const updateQuery = `UPDATE vps
		SET valid_until = ?, ip = ?, location = ?, creation_date = ?, cookie_status = ?, update_time = ?
		WHERE id = ?`
	_, err = tx.ExecContext(ctx, updateQuery,
		formatTime(next.ValidUntil),
		nullString(next.IP),
		nullString(next.Location),
		formatTime(next.CreationDate),
		string(next.CookieStatus),
		formatTime(next.UpdateTime),
		id,
	)
	if err != nil {
		return fmt.Errorf("write observation %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit observation %d: %w", id, err)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (r *AccountRepo) scanAccount(s scanner) (*model.Account, error) {
	var acct model.Account
	var cookie, status string
	var validUntil, ip, location, creationDate, updateTime sql.NullString

	err := s.Scan(&acct.ID, &acct.Name, &acct.Ops, &cookie,
		&validUntil, &ip, &location, &creationDate, &status, &updateTime)
	if err != nil {
		return nil, err
	}

	acct.Cookie, err = r.cipher.open(cookie)
	if err != nil {
		return nil, fmt.Errorf("decrypt cookie for account %d: %w", acct.ID, err)
	}

	if err := fillObservation(&acct, validUntil, ip, location, creationDate, status, updateTime); err != nil {
		return nil, err
	}
	return &acct, nil
}

func scanObservation(s scanner) (*model.Account, error) {
	var acct model.Account
	var status string
	var validUntil, ip, location, creationDate, updateTime sql.NullString

	if err := s.Scan(&validUntil, &ip, &location, &creationDate, &status, &updateTime); err != nil {
		return nil, err
	}

	if err := fillObservation(&acct, validUntil, ip, location, creationDate, status, updateTime); err != nil {
		return nil, err
	}
	return &acct, nil
}

func fillObservation(acct *model.Account, validUntil, ip, location, creationDate sql.NullString, status string, updateTime sql.NullString) error {
	var err error
	if acct.ValidUntil, err = parseNullTime(validUntil); err != nil {
		return fmt.Errorf("parse valid_until: %w", err)
	}
	if acct.CreationDate, err = parseNullTime(creationDate); err != nil {
		return fmt.Errorf("parse creation_date: %w", err)
	}
	if acct.UpdateTime, err = parseNullTime(updateTime); err != nil {
		return fmt.Errorf("parse update_time: %w", err)
	}
	acct.IP = ip.String
	acct.Location = location.String
	acct.CookieStatus = model.CookieStatus(status)
	if !acct.CookieStatus.Valid() {
		return fmt.Errorf("unknown cookie_status %q", status)
	}
	return nil
}

func requireAffected(res sql.Result, id int64) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("account %d: %w", id, driven.ErrAccountNotFound)
	}
	return nil
}

// formatTime stores instants as RFC 3339 text with their offset, or NULL.
func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseTime tries RFC 3339 first, then the SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.000",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
