package bidspath

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrPathParse reports a physio directory path with no recognizable
// subject/session identifiers.
var ErrPathParse = errors.New("cannot parse subject/session from path")

var (
	subjectPattern = regexp.MustCompile(`^sub-[A-Za-z0-9]+$`)
	sessionPattern = regexp.MustCompile(`^ses-[A-Za-z0-9]+$`)
)

// Identity names one session's position in the dataset.
type Identity struct {
	Subject string // sub-XX
	Session string // ses-YY
}

// ParseIdentity extracts subject and session identifiers from a physio root
// path. Both `.../sub-01/ses-01` directory nesting and a `sub-01_ses-01_...`
// basename are accepted.
func ParseIdentity(physioRoot string) (Identity, error) {
	cleaned := filepath.Clean(physioRoot)

	// Underscore-joined basename first: the acquisition export layout.
	base := filepath.Base(cleaned)
	parts := strings.Split(base, "_")
	if len(parts) >= 2 && subjectPattern.MatchString(parts[0]) && sessionPattern.MatchString(parts[1]) {
		return Identity{Subject: parts[0], Session: parts[1]}, nil
	}

	// Fall back to nested directory components.
	var id Identity
	for _, component := range strings.Split(cleaned, string(filepath.Separator)) {
		switch {
		case subjectPattern.MatchString(component):
			id.Subject = component
		case sessionPattern.MatchString(component):
			id.Session = component
		}
	}
	if id.Subject == "" || id.Session == "" {
		return Identity{}, fmt.Errorf("%w: %s (expected sub-<id> and ses-<id> components)", ErrPathParse, physioRoot)
	}
	return id, nil
}

// RunID formats a 1-based run index as the BIDS run entity.
func RunID(index int) string {
	return fmt.Sprintf("run-%02d", index)
}

// BoldSidecar returns the path of the bold JSON sidecar for one run.
func BoldSidecar(bidsRoot string, id Identity, task string, runIndex int) string {
	name := fmt.Sprintf("%s_%s_task-%s_%s_bold.json", id.Subject, id.Session, task, RunID(runIndex))
	return filepath.Join(bidsRoot, id.Subject, id.Session, "func", name)
}

// Recording returns the expected recording path inside the physio root for the
// given extension (".mat" or ".edf").
func Recording(physioRoot string, id Identity, task, ext string) string {
	name := fmt.Sprintf("%s_%s_task-%s_physio%s", id.Subject, id.Session, task, ext)
	return filepath.Join(physioRoot, name)
}

// PhysioOutputs returns the compressed time-series path and its JSON sidecar
// path for one run.
func PhysioOutputs(bidsRoot string, id Identity, task string, runIndex int) (tsvPath, jsonPath string) {
	dir := filepath.Join(bidsRoot, id.Subject, id.Session, "func")
	stem := fmt.Sprintf("%s_%s_task-%s_%s_physio", id.Subject, id.Session, task, RunID(runIndex))
	return filepath.Join(dir, stem+".tsv.gz"), filepath.Join(dir, stem+".json")
}

// QAPlot returns the session-level QA figure path inside the physio root.
func QAPlot(physioRoot string, id Identity, task string) string {
	name := fmt.Sprintf("%s_%s_task-%s_all_runs_physio.svg", id.Subject, id.Session, task)
	return filepath.Join(physioRoot, name)
}

// SourcedataDir returns the sourcedata mirror directory for the session.
func SourcedataDir(bidsRoot string, id Identity) string {
	return filepath.Join(bidsRoot, "sourcedata", id.Subject, id.Session)
}

var titleCaser = cases.Title(language.Und)

// TaskLabel normalizes a free-form task name into a BIDS task label:
// alphanumeric only, first word lowercased, later words title-cased
// ("resting state" -> "restingState").
func TaskLabel(name string) string {
	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(titleCaser.String(strings.ToLower(w)))
	}
	return b.String()
}
