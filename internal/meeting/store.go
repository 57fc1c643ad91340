package meeting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"minutes/internal/config"
)

// Store manages the meeting catalog backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.LibraryDir, "catalog.db"))
}

// OpenPath connects to a catalog database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the catalog database location.
func (s *Store) Path() string {
	return s.path
}

// New inserts a pending meeting for a freshly ingested recording.
func (s *Store) New(ctx context.Context, meetingID, title, sourcePath string, duration float64) (*Meeting, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO meetings (
            meeting_id, title, source_path, status, duration_seconds, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		meetingID,
		nullableString(title),
		nullableString(sourcePath),
		StatusPending,
		duration,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert meeting: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a meeting by database identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Meeting, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = ?`, id)
	m, err := scanMeeting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	return m, nil
}

// GetByMeetingID fetches a meeting by its canonical identifier.
func (s *Store) GetByMeetingID(ctx context.Context, meetingID string) (*Meeting, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE meeting_id = ?`, meetingID)
	m, err := scanMeeting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	return m, nil
}

// Update persists changes to an existing meeting.
func (s *Store) Update(ctx context.Context, m *Meeting) error {
	if m == nil {
		return errors.New("meeting is nil")
	}
	m.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE meetings
         SET title = ?, source_path = ?, status = ?, language = ?,
             duration_seconds = ?, error_message = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(m.Title),
		nullableString(m.SourcePath),
		m.Status,
		nullableString(m.Language),
		m.DurationSeconds,
		nullableString(m.ErrorMessage),
		m.UpdatedAt.Format(time.RFC3339Nano),
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("update meeting: %w", err)
	}
	return nil
}

// List returns meetings filtered by status set (or all meetings when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Meeting, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + meetingColumns + ` FROM meetings`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []*Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

// Remove deletes a meeting by identifier.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM meetings WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete meeting: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Stats returns a count of meetings grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM meetings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("catalog stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates catalog state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusPending:
			health.Pending += count
		case StatusFailed:
			health.Failed += count
		case StatusSummarized:
			health.Summarized += count
		default:
			if status.IsProcessing() {
				health.Processing += count
			}
		}
	}
	return health, nil
}

// CheckHealth verifies the catalog database is reachable and consistent.
func (s *Store) CheckHealth(ctx context.Context) error {
	if s.path == "" {
		return errors.New("catalog database path is unknown")
	}
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("stat catalog database: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		return fmt.Errorf("ping catalog database: %w", err)
	}

	var integrityResult string
	row := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	if err := row.Scan(&integrityResult); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if integrityResult != "ok" {
		return fmt.Errorf("integrity check failed: %s", integrityResult)
	}
	return nil
}

const meetingColumns = "id, meeting_id, title, source_path, status, language, duration_seconds, error_message, created_at, updated_at"

func scanMeeting(scanner interface{ Scan(dest ...any) error }) (*Meeting, error) {
	var (
		id           int64
		meetingID    string
		title        sql.NullString
		sourcePath   sql.NullString
		statusStr    string
		langCode     sql.NullString
		duration     sql.NullFloat64
		errorMessage sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&meetingID,
		&title,
		&sourcePath,
		&statusStr,
		&langCode,
		&duration,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	m := &Meeting{
		ID:              id,
		MeetingID:       meetingID,
		Title:           title.String,
		SourcePath:      sourcePath.String,
		Status:          Status(statusStr),
		Language:        langCode.String,
		DurationSeconds: duration.Float64,
		ErrorMessage:    errorMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		m.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		m.UpdatedAt = updated
	}
	return m, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
