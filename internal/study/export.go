package study

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

// TimestampLayout is the ISO-8601 layout used in exported documents.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

const filenameTimeLayout = "20060102T150405.000Z"

// Document is the exported study results document.
type Document struct {
	Participant string          `json:"participant"`
	MethodOrder []domain.Method `json:"methodOrder"`
	Trials      []TrialRecord   `json:"trials"`
}

// TrialRecord is one exported result.
type TrialRecord struct {
	ID             int           `json:"id"`
	TargetID       int           `json:"targetId"`
	Prompt         string        `json:"prompt"`
	Method         domain.Method `json:"method"`
	Phase          domain.Phase  `json:"phase"`
	SelectedID     int           `json:"selectedId"`
	TimeTaken      string        `json:"timeTaken"`
	Success        bool          `json:"success"`
	FailedAttempts int           `json:"failedAttempts"`
	Timestamp      string        `json:"timestamp"`
}

// BuildDocument converts results into the export document.
func BuildDocument(participant string, methodOrder []domain.Method, results []domain.TrialResult) Document {
	doc := Document{
		Participant: participant,
		MethodOrder: append([]domain.Method{}, methodOrder...),
		Trials:      make([]TrialRecord, len(results)),
	}
	for i, r := range results {
		doc.Trials[i] = TrialRecord{
			ID:             r.ID,
			TargetID:       r.TargetID,
			Prompt:         r.Prompt,
			Method:         r.Method,
			Phase:          r.Phase,
			SelectedID:     r.SelectedID,
			TimeTaken:      fmt.Sprintf("%.3f", r.TimeTakenMs),
			Success:        r.Success,
			FailedAttempts: r.FailedAttempts,
			Timestamp:      r.Timestamp.UTC().Format(TimestampLayout),
		}
	}
	return doc
}

// Encode renders doc as indented JSON. Equal documents encode to equal bytes.
func Encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode results: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename names an artifact from the participant and export time.
func Filename(participant string, at time.Time) string {
	return fmt.Sprintf("study_%s_%s.json", sanitize(participant), at.UTC().Format(filenameTimeLayout))
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, strings.TrimSpace(s))
	if s == "" {
		return "anonymous"
	}
	return s
}

// Exporter mints export artifacts.
type Exporter struct {
	clock Clock
}

// NewExporter creates an exporter.
func NewExporter(clock Clock) *Exporter {
	if clock == nil {
		clock = SystemClock()
	}
	return &Exporter{clock: clock}
}

// Export serialises results. Each call mints a new id, timestamp and filename.
func (e *Exporter) Export(participant string, methodOrder []domain.Method, results []domain.TrialResult) (*domain.ExportArtifact, error) {
	data, err := Encode(BuildDocument(participant, methodOrder, results))
	if err != nil {
		return nil, err
	}
	now := e.clock.Now()
	return &domain.ExportArtifact{
		ExportID:    "exp_" + uuid.New().String()[:8],
		Filename:    Filename(participant, now),
		Participant: participant,
		Document:    data,
		CreatedAt:   now,
	}, nil
}
