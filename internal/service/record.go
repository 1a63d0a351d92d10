package service

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arturoeanton/repolens/internal/domain"
)

// Record is the metadata an extractor produces for one repository.
// It is read from YAML or JSON; JSON documents parse as YAML.
type Record struct {
	Name            string           `yaml:"repo_name"`
	CommitHash      string           `yaml:"commit_hash"`
	TotalCommits    int              `yaml:"total_commits"`
	Branches        []string         `yaml:"branches"`
	Tags            []string         `yaml:"tags"`
	Contributors    []string         `yaml:"contributors"`
	MostActive      ContributorField `yaml:"most_active_contributor"`
	FirstCommitDate string           `yaml:"first_commit_date"`
	LastCommitDate  string           `yaml:"last_commit_date"`
	Languages       map[string]int   `yaml:"languages"`
	FilesCount      int              `yaml:"files_count"`
	CommitMessages  []string         `yaml:"commit_messages"`
}

// ContributorField accepts either a bare contributor id or {id, commits}.
type ContributorField struct {
	domain.Contributor
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *ContributorField) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			return nil
		}
		c.ID = value.Value
		return nil
	case yaml.MappingNode:
		return value.Decode(&c.Contributor)
	default:
		return fmt.Errorf("most_active_contributor: unsupported yaml kind %d at line %d", value.Kind, value.Line)
	}
}

var recordTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseRecordTime(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "none") || strings.EqualFold(v, "null") {
		return time.Time{}, nil
	}
	for _, layout := range recordTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: unrecognised time %q", field, v)
}

// ParseRecord decodes an extractor record.
func ParseRecord(data []byte) (*Record, error) {
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	if strings.TrimSpace(r.Name) == "" {
		return nil, fmt.Errorf("parse record: repo_name is required")
	}
	return &r, nil
}

// LoadRecord reads and decodes an extractor record file.
func LoadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	return ParseRecord(data)
}

// Summary converts the record to a repository summary without an embedding.
func (r *Record) Summary() (domain.RepositorySummary, error) {
	first, err := parseRecordTime("first_commit_date", r.FirstCommitDate)
	if err != nil {
		return domain.RepositorySummary{}, err
	}
	last, err := parseRecordTime("last_commit_date", r.LastCommitDate)
	if err != nil {
		return domain.RepositorySummary{}, err
	}

	return domain.RepositorySummary{
		Name:            r.Name,
		HeadCommit:      r.CommitHash,
		TotalCommits:    r.TotalCommits,
		Branches:        r.Branches,
		Tags:            r.Tags,
		Contributors:    r.Contributors,
		MostActive:      r.MostActive.Contributor,
		FirstCommitDate: first,
		LastCommitDate:  last,
		Languages:       r.Languages,
		FilesCount:      r.FilesCount,
		CommitMessages:  r.CommitMessages,
	}, nil
}
