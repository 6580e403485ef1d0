package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/testgest/testgest-backend/internal/repository"
)

// ResultService serves session outcomes for the admin dashboard and export.
type ResultService struct {
	sessions SessionStore
	logger   zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(sessions SessionStore) *ResultService {
	return &ResultService{
		sessions: sessions,
		logger:   log.With().Str("component", "result_service").Logger(),
	}
}

// List retrieves recent session outcomes with candidate data.
func (s *ResultService) List(ctx context.Context, limit int) ([]repository.SessionResult, error) {
	return s.sessions.ListResults(ctx, limit)
}

// Stats aggregates session counts and averages.
func (s *ResultService) Stats(ctx context.Context) (*repository.SessionStats, error) {
	return s.sessions.Stats(ctx)
}

// ExportCSV streams the result listing as CSV.
func (s *ResultService) ExportCSV(ctx context.Context, w io.Writer, limit int) error {
	results, err := s.sessions.ListResults(ctx, limit)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"session_id", "first_name", "last_name", "email", "school", "started_at", "ended_at", "terminated", "score_total", "score_max", "percentage"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		endedAt := ""
		if r.EndedAt != nil {
			endedAt = r.EndedAt.Format(time.RFC3339)
		}
		row := []string{
			strconv.Itoa(r.SessionID),
			r.FirstName,
			r.LastName,
			r.Email,
			r.School,
			r.StartedAt.Format(time.RFC3339),
			endedAt,
			strconv.FormatBool(r.Terminated),
			strconv.Itoa(r.ScoreTotal),
			strconv.Itoa(r.ScoreMax),
			fmt.Sprintf("%.2f", r.Percentage),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
