package importer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bpasys/bpasys/internal/platform/tabular"
)

// DefaultChunkSize is how many accepted records each store call persists.
const DefaultChunkSize = 50

// Store persists one chunk of accepted records. A chunk either persists
// entirely or fails entirely; partial writes within a chunk are the store's
// problem, not the pipeline's.
type Store interface {
	PersistChunk(ctx context.Context, recs []*Record) error
}

// Outcome is the validation result for one row. An empty Errors slice means
// the row is valid; otherwise Errors lists every violation found, in rule
// order.
type Outcome struct {
	Record *Record
	Errors []string
}

// Valid reports whether the row survived validation and deduplication.
func (o *Outcome) Valid() bool { return len(o.Errors) == 0 }

// Failure is one rejected row of the final report, echoing the identifier and
// name so operators can locate it without reopening the upload.
type Failure struct {
	Row        int      `json:"row"`
	Identifier string   `json:"identifier,omitempty"`
	Name       string   `json:"name,omitempty"`
	Errors     []string `json:"errors"`

	record *Record
}

// RowWarning is a non-fatal data-quality note attached to an accepted row.
type RowWarning struct {
	Row      int      `json:"row"`
	Messages []string `json:"messages"`
}

// Report is the aggregate result of a run. Failures merge rows rejected at
// validation, dedup and persistence time, ordered by original row number.
type Report struct {
	TotalRows int          `json:"total_rows"`
	BlankRows int          `json:"blank_rows"`
	Valid     int          `json:"valid"`
	Invalid   int          `json:"invalid"`
	Persisted int          `json:"persisted"`
	Progress  int          `json:"progress"`
	DryRun    bool         `json:"dry_run"`
	Failures  []Failure    `json:"failures"`
	Warnings  []RowWarning `json:"warnings,omitempty"`
}

// ExportRows projects the report's failures into spreadsheet rows: one column
// per schema field plus a trailing ERRO column with the joined violations.
func (r *Report) ExportRows(s *Schema) (headers []string, rows [][]string) {
	for _, f := range s.Fields {
		headers = append(headers, f.Label)
	}
	headers = append(headers, "ERRO")

	for _, fail := range r.Failures {
		row := make([]string, 0, len(s.Fields)+1)
		for _, f := range s.Fields {
			row = append(row, exportValue(fail.record, f))
		}
		row = append(row, strings.Join(fail.Errors, "; "))
		rows = append(rows, row)
	}
	return headers, rows
}

func exportValue(rec *Record, f Field) string {
	if rec == nil {
		return ""
	}
	switch f.Kind {
	case FieldDate:
		d, ok := rec.Dates[f.Name]
		if !ok {
			return ""
		}
		if d.HasTime {
			return d.Time.UTC().Format("02/01/2006 15:04")
		}
		return d.Time.UTC().Format("02/01/2006")
	case FieldBool:
		if v, ok := rec.Flags[f.Name]; ok {
			if v {
				return "SIM"
			}
			return "NÃO"
		}
		return ""
	default:
		return rec.Text[f.Name]
	}
}

// Engine runs the import pipeline for one schema. A fresh reference index and
// dedup seen-set are built per run, so concurrent runs stay independent.
type Engine struct {
	Schema *Schema
	Rules  []Rule
	Key    KeyFunc
	Source Source
	Store  Store

	ChunkSize  int
	Log        zerolog.Logger
	Now        func() time.Time
	OnProgress func(percent int)
}

// Preview runs the pipeline without persisting anything: the report shows
// what a confirmed import would do.
func (e *Engine) Preview(ctx context.Context, sheet *tabular.Sheet) (*Report, error) {
	return e.run(ctx, sheet, true)
}

// Import runs the pipeline and persists the accepted rows in chunks.
func (e *Engine) Import(ctx context.Context, sheet *tabular.Sheet) (*Report, error) {
	return e.run(ctx, sheet, false)
}

func (e *Engine) run(ctx context.Context, sheet *tabular.Sheet, dryRun bool) (*Report, error) {
	fm, err := MapHeaders(sheet.Header, e.Schema)
	if err != nil {
		return nil, err
	}
	for _, amb := range fm.Ambiguities() {
		e.Log.Warn().
			Str("schema", e.Schema.Name).
			Str("field", amb.Field).
			Ints("columns", amb.Columns).
			Msg("multiple columns match field; using the first")
	}

	report := &Report{TotalRows: len(sheet.Rows), DryRun: dryRun}

	// Normalize. Blank rows are skipped entirely: they are formatting
	// leftovers, not data.
	var records []*Record
	for i, row := range sheet.Rows {
		rec := NormalizeRow(row, fm, e.Schema, sheet.RowNumber(i))
		if rec == nil {
			report.BlankRows++
			continue
		}
		records = append(records, rec)
	}

	refs, err := buildIndex(ctx, e.Source, records, e.Schema.IdentifierField)
	if err != nil {
		return nil, err
	}

	// Validate every row against every rule; violations accumulate so the
	// operator sees the full picture per row.
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	runStart := now().UTC()

	outcomes := make([]*Outcome, 0, len(records))
	for _, rec := range records {
		o := &Outcome{Record: rec}
		for _, rule := range e.Rules {
			o.Errors = append(o.Errors, rule(rec, refs)...)
		}
		if e.Schema.ServiceDateField != "" && !rec.Has(e.Schema.ServiceDateField) {
			// Legacy batches routinely lack a service date; defaulting to the
			// run start keeps them importable. Flagged, not rejected.
			rec.Dates[e.Schema.ServiceDateField] = tabular.Date{Time: runStart, HasTime: true}
			rec.Warn("data de atendimento ausente; assumida a data da importação")
		}
		outcomes = append(outcomes, o)
	}

	// Dedup: persisted keys first, then first-wins within the file.
	if e.Key != nil {
		refs.Existing, err = e.existingKeys(ctx, outcomes)
		if err != nil {
			return nil, err
		}
		deduplicate(outcomes, e.Key, refs.Existing)
	}

	var accepted []*Record
	for _, o := range outcomes {
		if o.Valid() {
			accepted = append(accepted, o.Record)
		} else {
			report.Failures = append(report.Failures, e.failure(o.Record, o.Errors))
		}
		if len(o.Record.Warnings) > 0 {
			report.Warnings = append(report.Warnings, RowWarning{Row: o.Record.Row, Messages: o.Record.Warnings})
		}
	}
	report.Valid = len(accepted)

	if !dryRun {
		e.persist(ctx, accepted, report)
	}

	sort.SliceStable(report.Failures, func(i, j int) bool {
		return report.Failures[i].Row < report.Failures[j].Row
	})
	report.Invalid = len(report.Failures)

	e.Log.Info().
		Str("schema", e.Schema.Name).
		Int("total", report.TotalRows).
		Int("valid", report.Valid).
		Int("invalid", report.Invalid).
		Int("persisted", report.Persisted).
		Bool("dry_run", dryRun).
		Msg("import run finished")

	return report, nil
}

// existingKeys fetches the persisted duplicate keys, scoped to the subjects
// actually present in this batch.
func (e *Engine) existingKeys(ctx context.Context, outcomes []*Outcome) (map[Key]bool, error) {
	seen := make(map[uuid.UUID]bool)
	var subjectIDs []uuid.UUID
	for _, o := range outcomes {
		if !o.Valid() {
			continue
		}
		id := o.Record.SubjectID
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		subjectIDs = append(subjectIDs, id)
	}

	existing, err := e.Source.ExistingKeys(ctx, subjectIDs)
	if err != nil {
		return nil, &ReferenceError{Err: fmt.Errorf("load persisted keys: %w", err)}
	}
	if existing == nil {
		existing = make(map[Key]bool)
	}
	return existing, nil
}

func (e *Engine) persist(ctx context.Context, accepted []*Record, report *Report) {
	chunkSize := e.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	totalChunks := (len(accepted) + chunkSize - 1) / chunkSize
	if totalChunks == 0 {
		report.Progress = 100
		return
	}

	for i := 0; i < totalChunks; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(accepted) {
			end = len(accepted)
		}
		chunk := accepted[start:end]

		if err := e.Store.PersistChunk(ctx, chunk); err != nil {
			// A failed chunk never blocks the rest of the run: its rows move
			// to the error report with the store's message attached.
			e.Log.Error().Err(err).
				Str("schema", e.Schema.Name).
				Int("chunk", i+1).
				Int("rows", len(chunk)).
				Msg("chunk persistence failed")
			for _, rec := range chunk {
				report.Failures = append(report.Failures,
					e.failure(rec, []string{"falha ao gravar: " + err.Error()}))
			}
		} else {
			report.Persisted += len(chunk)
		}

		report.Progress = int(math.Round(100 * float64(i+1) / float64(totalChunks)))
		if e.OnProgress != nil {
			e.OnProgress(report.Progress)
		}
		e.Log.Info().
			Str("schema", e.Schema.Name).
			Int("progress", report.Progress).
			Int("persisted", report.Persisted).
			Msg("import progress")
	}
}

func (e *Engine) failure(rec *Record, errs []string) Failure {
	return Failure{
		Row:        rec.Row,
		Identifier: rec.Text[e.Schema.IdentifierField],
		Name:       rec.Text[e.Schema.NameField],
		Errors:     errs,
		record:     rec,
	}
}
