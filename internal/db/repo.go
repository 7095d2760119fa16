package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	mssql "github.com/microsoft/go-mssqldb"
	"modernc.org/sqlite"

	"thrive-chatbot/internal/config"
	"thrive-chatbot/pkg"
)

// ErrDuplicateAccount is returned by CreateAccount when the email is taken.
var ErrDuplicateAccount = errors.New("account already exists")

// Repository reads profile and health data and stores local accounts.
// Every call checks out its own connection and returns it before exiting;
// nothing is shared between calls.
type Repository struct {
	DB      *sql.DB
	Dialect Dialect
}

// NewRepository constructs a new Repository from an existing sql.DB.
// The caller is responsible for managing the DB connection lifecycle.
func NewRepository(db *sql.DB, dialect Dialect) *Repository {
	return &Repository{DB: db, Dialect: dialect}
}

// Open prepares a handle for the database described by cfg.  No connection
// is made until the first call; an unreachable store shows up as
// pkg.ErrDataAccess on that call.  Idle pooling is disabled so each
// repository call gets a fresh connection.
func Open(cfg config.DatabaseConfig) (*sql.DB, Dialect, error) {
	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open(string(dialect), cfg.DSN())
	if err != nil {
		return nil, "", fmt.Errorf("%w: open %s: %v", pkg.ErrDataAccess, dialect, err)
	}
	db.SetMaxIdleConns(0)
	return db, dialect, nil
}

// Ping checks that the store is reachable.
func Ping(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %v", pkg.ErrDataAccess, err)
	}
	return nil
}

func (r *Repository) conn(ctx context.Context) (*sql.Conn, error) {
	c, err := r.DB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", pkg.ErrDataAccess, err)
	}
	return c, nil
}

// FetchProfile returns the profile for userID.  A missing row yields the
// zero UserProfile and a nil error.
func (r *Repository) FetchProfile(ctx context.Context, userID string) (pkg.UserProfile, error) {
	c, err := r.conn(ctx)
	if err != nil {
		return pkg.UserProfile{}, err
	}
	defer c.Close()

	var (
		name, sex, goals sql.NullString
		age              sql.NullInt64
		updated          any
		p                pkg.UserProfile
	)
	err = c.QueryRowContext(ctx, r.Dialect.Rebind(
		`SELECT user_id, name, age, sex, health_goals, last_updated
		FROM UserProfile
		WHERE user_id = ?`), userID,
	).Scan(&p.UserID, &name, &age, &sex, &goals, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return pkg.UserProfile{}, nil
	}
	if err != nil {
		return pkg.UserProfile{}, fmt.Errorf("%w: fetch profile: %v", pkg.ErrDataAccess, err)
	}

	p.Name = name.String
	p.Sex = sex.String
	p.HealthGoals = goals.String
	p.Age = intPtr(age)
	p.LastUpdated = asTime(updated)
	return p, nil
}

// FetchLatestEntry returns the most recent health entry for userID by
// timestamp.  A user without entries yields the zero HealthEntry.
func (r *Repository) FetchLatestEntry(ctx context.Context, userID string) (pkg.HealthEntry, error) {
	c, err := r.conn(ctx)
	if err != nil {
		return pkg.HealthEntry{}, err
	}
	defer c.Close()

	var (
		entryID, sex, symptoms, habits sql.NullString
		goals, recs, followUps         sql.NullString
		age                            sql.NullInt64
		ts                             any
		e                              pkg.HealthEntry
	)
	err = c.QueryRowContext(ctx, r.Dialect.latestEntryQuery(), userID).Scan(
		&e.UserID, &entryID, &ts, &age, &sex, &symptoms, &habits, &goals, &recs, &followUps,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return pkg.HealthEntry{}, nil
	}
	if err != nil {
		return pkg.HealthEntry{}, fmt.Errorf("%w: fetch latest entry: %v", pkg.ErrDataAccess, err)
	}

	e.EntryID = entryID.String
	e.Timestamp = asTime(ts)
	e.Age = intPtr(age)
	e.Sex = sex.String
	e.Symptoms = symptoms.String
	e.Habits = habits.String
	e.HealthGoals = goals.String
	e.Recommendations = recs.String
	e.FollowUpQuestions = followUps.String
	return e, nil
}

// CreateAccount stores a new local account and returns it with a fresh
// UserID.  ErrDuplicateAccount is returned when the email already exists.
func (r *Repository) CreateAccount(ctx context.Context, email, passwordHash string) (*pkg.Account, error) {
	c, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	email = normalizeEmail(email)
	var exists int
	err = c.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT COUNT(*) FROM app_users WHERE email = ?`), email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: check account: %v", pkg.ErrDataAccess, err)
	}
	if exists > 0 {
		return nil, ErrDuplicateAccount
	}

	acct := &pkg.Account{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err = c.ExecContext(ctx, r.Dialect.Rebind(
		`INSERT INTO app_users (user_id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`),
		acct.UserID, acct.Email, acct.PasswordHash, acct.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("%w: create account: %v", pkg.ErrDataAccess, err)
	}
	return acct, nil
}

// GetAccountByEmail returns the local account for email, or nil when none
// exists.
func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*pkg.Account, error) {
	c, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var (
		a       pkg.Account
		created any
	)
	err = c.QueryRowContext(ctx, r.Dialect.Rebind(
		`SELECT user_id, email, password_hash, created_at FROM app_users WHERE email = ?`),
		normalizeEmail(email),
	).Scan(&a.UserID, &a.Email, &a.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get account: %v", pkg.ErrDataAccess, err)
	}
	if t := asTime(created); t != nil {
		a.CreatedAt = *t
	}
	return &a, nil
}

// RecordPasswordReset notes that a reset was requested for userID.
func (r *Repository) RecordPasswordReset(ctx context.Context, userID string) error {
	c, err := r.conn(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	_, err = c.ExecContext(ctx, r.Dialect.Rebind(
		`INSERT INTO password_resets (user_id, requested_at) VALUES (?, ?)`),
		userID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: record password reset: %v", pkg.ErrDataAccess, err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		// SQLITE_CONSTRAINT_UNIQUE
		return sqliteErr.Code() == 2067
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return msErr.Number == 2627 || msErr.Number == 2601
	}
	return false
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// asTime converts whatever the driver handed back for a timestamp column.
// Unparseable values become nil rather than failing the whole read.
func asTime(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case []byte:
		return parseTime(string(t))
	case string:
		return parseTime(t)
	case int64:
		u := time.Unix(t, 0).UTC()
		return &u
	default:
		return nil
	}
}

func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, " m="); i > 0 {
		s = s[:i]
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
