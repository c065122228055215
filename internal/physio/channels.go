package physio

import (
	"errors"
	"log/slog"
	"strings"

	"physiobids/internal/logging"
)

// Role identifies the physiological meaning of a recorded channel.
type Role int

const (
	RoleUnmapped Role = iota
	RoleCardiac
	RoleRespiratory
	RoleElectrodermal
	RoleTrigger
	RolePulseOx
)

var roleNames = map[Role]string{
	RoleUnmapped:      "unmapped",
	RoleCardiac:       "cardiac",
	RoleRespiratory:   "respiratory",
	RoleElectrodermal: "electrodermal",
	RoleTrigger:       "trigger",
	RolePulseOx:       "ppg",
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return "unmapped"
}

// BIDSColumn returns the column name used in the physio TSV and sidecar.
func (r Role) BIDSColumn() string {
	return r.String()
}

// ErrMissingTriggerChannel reports that no channel mapped to the trigger role.
// It is raised only when a trigger is actually required, not at mapping time.
var ErrMissingTriggerChannel = errors.New("no trigger channel found in recording")

// digitalInputMarker excludes the scanner's auxiliary digital lines; they carry
// no physiological signal and their labels collide with the substring table.
const digitalInputMarker = "digital input"

// rolePatterns is evaluated in order; the first containment match wins. Order
// is significant: "Trigger" must be tested before looser patterns added later.
var rolePatterns = []struct {
	pattern string
	role    Role
}{
	{"ECG", RoleCardiac},
	{"RSP", RoleRespiratory},
	{"EDA", RoleElectrodermal},
	{"Trigger", RoleTrigger},
	{"PPG", RolePulseOx},
}

// Mapping relates original channel labels to roles for one recording.
type Mapping struct {
	// byLabel holds only labels that matched a role.
	byLabel map[string]Role
	// columns are the matched channels in recording order.
	columns []MappedChannel
}

// MappedChannel pairs a recording column with its resolved role.
type MappedChannel struct {
	Index int
	Label string
	Role  Role
}

// MapLabels resolves every channel label against the role table. Unmatched
// labels are logged as warnings and omitted; the session proceeds with
// whatever matched. triggerLabel, when non-empty, forces that exact label to
// the trigger role ahead of the table.
func MapLabels(labels []string, triggerLabel string, logger *slog.Logger) Mapping {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := Mapping{byLabel: make(map[string]Role, len(labels))}
	for i, label := range labels {
		if strings.Contains(strings.ToLower(label), digitalInputMarker) {
			continue
		}
		role := RoleUnmapped
		if triggerLabel != "" && label == triggerLabel {
			role = RoleTrigger
		} else {
			for _, entry := range rolePatterns {
				if strings.Contains(label, entry.pattern) {
					role = entry.role
					break
				}
			}
		}
		if role == RoleUnmapped {
			logger.Warn("channel label matched no known role, omitting",
				logging.String(logging.FieldChannel, label))
			continue
		}
		m.byLabel[label] = role
		m.columns = append(m.columns, MappedChannel{Index: i, Label: label, Role: role})
	}
	return m
}

// Role returns the role mapped for label, if any.
func (m Mapping) Role(label string) (Role, bool) {
	role, ok := m.byLabel[label]
	return role, ok
}

// Channels returns the mapped channels in recording order.
func (m Mapping) Channels() []MappedChannel {
	return m.columns
}

// OrderedRoles returns the roles of mapped channels in recording order. This
// is the column order of every output file.
func (m Mapping) OrderedRoles() []Role {
	roles := make([]Role, len(m.columns))
	for i, c := range m.columns {
		roles[i] = c.Role
	}
	return roles
}

// TriggerIndex returns the recording column of the trigger channel.
func (m Mapping) TriggerIndex() (int, error) {
	for _, c := range m.columns {
		if c.Role == RoleTrigger {
			return c.Index, nil
		}
	}
	return 0, ErrMissingTriggerChannel
}
