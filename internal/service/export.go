package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/arturoeanton/repolens/internal/port"
)

// csvHeader mirrors the extractor record fields.
var csvHeader = []string{
	"repo_name", "total_commits", "branches", "tags", "contributors",
	"most_active_contributor", "first_commit_date", "last_commit_date",
	"languages", "files_count", "commit_messages",
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("2006-01-02 15:04:05-07:00")
}

// ExportCSV writes one row per indexed repository summary.
func ExportCSV(ctx context.Context, summaries port.SummaryStore, w io.Writer) (int, error) {
	rows, err := summaries.ListSummaries(ctx)
	if err != nil {
		return 0, fmt.Errorf("export csv: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("export csv: %w", err)
	}

	for _, s := range rows {
		languages, err := json.Marshal(s.Languages)
		if err != nil {
			return 0, fmt.Errorf("export csv: languages for %s: %w", s.Name, err)
		}
		messages, err := json.Marshal(s.CommitMessages)
		if err != nil {
			return 0, fmt.Errorf("export csv: commit messages for %s: %w", s.Name, err)
		}

		record := []string{
			s.Name,
			strconv.Itoa(s.TotalCommits),
			strings.Join(s.Branches, ";"),
			strings.Join(s.Tags, ";"),
			strings.Join(s.Contributors, ";"),
			s.MostActive.ID,
			formatTimestamp(s.FirstCommitDate),
			formatTimestamp(s.LastCommitDate),
			string(languages),
			strconv.Itoa(s.FilesCount),
			string(messages),
		}
		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("export csv: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("export csv: %w", err)
	}
	return len(rows), nil
}
