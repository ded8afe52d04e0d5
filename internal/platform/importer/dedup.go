package importer

import "github.com/google/uuid"

// Key identifies one real-world production event: the resolved subject, the
// procedure and the calendar day of service. Two rows with equal keys are the
// same event regardless of exact timestamps.
type Key struct {
	Subject uuid.UUID
	Code    string
	Day     string
}

// KeyFunc derives the duplicate key for a validated record. Returning false
// exempts the record from deduplication.
type KeyFunc func(rec *Record) (Key, bool)

// Messages attached by the dedup pass.
const (
	MsgAlreadyRegistered = "produção já registrada"
	MsgDuplicateInFile   = "registro duplicado no arquivo"
)

// deduplicate walks the validated outcomes in original row order. A key found
// in the persisted set demotes the row with MsgAlreadyRegistered; a key seen
// earlier in the same run demotes it with MsgDuplicateInFile. The first
// in-file occurrence always wins: it is the one added to the seen set.
func deduplicate(outcomes []*Outcome, keyFn KeyFunc, persisted map[Key]bool) {
	seen := make(map[Key]bool)
	for _, o := range outcomes {
		if !o.Valid() {
			continue
		}
		key, ok := keyFn(o.Record)
		if !ok {
			continue
		}
		switch {
		case persisted[key]:
			o.Errors = append(o.Errors, MsgAlreadyRegistered)
		case seen[key]:
			o.Errors = append(o.Errors, MsgDuplicateInFile)
		default:
			seen[key] = true
		}
	}
}
