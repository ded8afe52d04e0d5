package importer

import "fmt"

// Rule examines one normalized record against the reference index and returns
// the violations it finds. Rules never mutate shared state; the only record
// mutation allowed is attaching the resolved subject id or warnings. All
// rules run for every row so operators see every violation together, not just
// the first.
type Rule func(rec *Record, refs *ReferenceIndex) []string

// Severity controls whether a status-conditional date rule rejects the row or
// only flags it.
type Severity int

const (
	Warn Severity = iota
	Fatal
)

// StatusDateRule requires (or recommends) a date field when the row's status
// matches. Kept as data so workflow policy stays visible and overridable.
type StatusDateRule struct {
	Status    string
	DateField string
	Message   string
	Severity  Severity
}

// RequireField rejects rows missing the given canonical field.
func RequireField(field, message string) Rule {
	return func(rec *Record, _ *ReferenceIndex) []string {
		if !rec.Has(field) {
			return []string{message}
		}
		return nil
	}
}

// MinDigits rejects identifier values shorter than n digits. Absent values
// are left to RequireField.
func MinDigits(field string, n int, message string) Rule {
	return func(rec *Record, _ *ReferenceIndex) []string {
		v, ok := rec.Text[field]
		if !ok {
			return nil
		}
		if len(v) < n {
			return []string{fmt.Sprintf("%s (%d dígitos)", message, len(v))}
		}
		return nil
	}
}

// SubjectResolves rejects rows whose identifier does not resolve in the
// reference index, and stamps the resolved subject id on the record when it
// does.
func SubjectResolves(field, message string) Rule {
	return func(rec *Record, refs *ReferenceIndex) []string {
		v, ok := rec.Text[field]
		if !ok {
			return []string{message}
		}
		id, ok := refs.Subjects[v]
		if !ok {
			return []string{message}
		}
		rec.SubjectID = id
		return nil
	}
}

// ProcedureKnown rejects rows whose procedure code is absent or not in the
// registered code set.
func ProcedureKnown(field, message string) Rule {
	return func(rec *Record, refs *ReferenceIndex) []string {
		v, ok := rec.Text[field]
		if !ok || !refs.Procedures[v] {
			return []string{message}
		}
		return nil
	}
}

// StatusDates applies the schema's status-conditional date policy. Fatal
// rules produce violations; Warn rules only annotate the record.
func StatusDates(statusField string, rules []StatusDateRule) Rule {
	return func(rec *Record, _ *ReferenceIndex) []string {
		status, ok := rec.Text[statusField]
		if !ok {
			return nil
		}
		var violations []string
		for _, r := range rules {
			if r.Status != status || rec.Has(r.DateField) {
				continue
			}
			if r.Severity == Fatal {
				violations = append(violations, r.Message)
			} else {
				rec.Warn(r.Message)
			}
		}
		return violations
	}
}

// OneOf rejects rows whose field value is outside the allowed set. Absent
// values pass; pair with RequireField when the field is mandatory.
func OneOf(field string, allowed []string, message string) Rule {
	set := make(map[string]bool, len(allowed))
	for _, v := range allowed {
		set[v] = true
	}
	return func(rec *Record, _ *ReferenceIndex) []string {
		v, ok := rec.Text[field]
		if !ok {
			return nil
		}
		if !set[v] {
			return []string{fmt.Sprintf("%s: %q", message, v)}
		}
		return nil
	}
}
