// Package source reads stored pre-assessment submissions from Postgres so they
// can be rescored. It never writes: the table belongs to the application that
// collects the answers.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/psyscore/psyscore/pkg/assessment"
)

// Service provides read-only access to stored submissions.
type Service struct {
	db    *sql.DB
	table string
}

// Filter narrows which submissions are listed.
type Filter struct {
	Since time.Time // zero means no lower bound
	Limit int       // zero means no limit
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, databaseURL, table string) (*Service, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewService(db, table), nil
}

// NewService creates a Service over an existing connection.
func NewService(db *sql.DB, table string) *Service {
	if table == "" {
		table = "pre_assessments"
	}
	return &Service{db: db, table: table}
}

// Close closes the underlying connection.
func (s *Service) Close() error {
	return s.db.Close()
}

// listQuery builds the submission query. The table name is quoted; filter
// values are always bound as parameters.
func (s *Service) listQuery(f Filter) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT id, questionnaires, answers, created_at FROM `)
	b.WriteString(pq.QuoteIdentifier(s.table))

	var args []any
	if !f.Since.IsZero() {
		args = append(args, f.Since)
		b.WriteString(` WHERE created_at >= $` + strconv.Itoa(len(args)))
	}
	b.WriteString(` ORDER BY created_at ASC`)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		b.WriteString(` LIMIT $` + strconv.Itoa(len(args)))
	}
	return b.String(), args
}

// ListSubmissions returns stored submissions oldest first.
func (s *Service) ListSubmissions(ctx context.Context, f Filter) ([]*assessment.Submission, error) {
	query, args := s.listQuery(f)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var subs []*assessment.Submission
	for rows.Next() {
		var (
			sub     assessment.Submission
			answers []int64
		)
		if err := rows.Scan(&sub.ID, pq.Array(&sub.Instruments), pq.Array(&answers), &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		sub.Answers = make([]int, len(answers))
		for i, a := range answers {
			sub.Answers[i] = int(a)
		}
		subs = append(subs, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}
