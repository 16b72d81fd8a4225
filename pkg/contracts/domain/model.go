package domain

import (
	"fmt"
	"path"
	"time"
)

// ModelLetter identifies one of the fixed analytic report types. The C and
// H models exist in a student and a group variant sharing a base letter.
type ModelLetter string

const (
	ModelA       ModelLetter = "A"
	ModelB       ModelLetter = "B"
	ModelCEleve  ModelLetter = "C_ELEVE"
	ModelCGroupe ModelLetter = "C_GROUPE"
	ModelD       ModelLetter = "D"
	ModelE       ModelLetter = "E"
	ModelF       ModelLetter = "F"
	ModelG       ModelLetter = "G"
	ModelHEleve  ModelLetter = "H_ELEVE"
	ModelHGroupe ModelLetter = "H_GROUPE"
)

// StudentModels are the per-player models assembled for each session.
var StudentModels = []ModelLetter{ModelA, ModelB, ModelCEleve, ModelE, ModelHEleve}

// GroupModels are the per-group models assembled for each session date.
var GroupModels = []ModelLetter{ModelCGroupe, ModelD, ModelF, ModelG, ModelHGroupe}

// Base returns the base letter shared by student and group variants.
func (m ModelLetter) Base() string {
	for i := 0; i < len(m); i++ {
		if m[i] == '_' {
			return string(m[:i])
		}
	}
	return string(m)
}

// ModelScope distinguishes student-scoped from group-scoped records.
type ModelScope string

const (
	ScopeStudent ModelScope = "eleve"
	ScopeGroup   ModelScope = "groupe"
)

// RecordStatus marks whether a record carries full or degraded content.
type RecordStatus string

const (
	StatusOK       RecordStatus = "ok"
	StatusDegraded RecordStatus = "degraded"
)

// ModelRecord is the assembled output for one model letter and one
// player or group session. Records are recomputed on every run and carry
// the routing metadata (identity or group marker plus session date) the
// rendering collaborator files artifacts by.
type ModelRecord struct {
	ID             string       `json:"id" validate:"required,uuid"`
	RunID          string       `json:"run_id" validate:"required,uuid"`
	Model          ModelLetter  `json:"model" validate:"required"`
	Scope          ModelScope   `json:"scope" validate:"required,oneof=eleve groupe"`
	Player         string       `json:"player,omitempty"`
	SessionDate    time.Time    `json:"session_date" validate:"required"`
	Status         RecordStatus `json:"status" validate:"required,oneof=ok degraded"`
	DegradedReason string       `json:"degraded_reason,omitempty"`
	Payload        interface{}  `json:"payload,omitempty"`
	GeneratedAt    time.Time    `json:"generated_at"`
}

// ArtifactName returns the report file stem for the record, without
// extension: ModelA_dupont_05062024 for students,
// ModelC_GROUPE_05062024 for groups.
func (r ModelRecord) ArtifactName() string {
	owner := r.Player
	if r.Scope == ScopeGroup {
		owner = "GROUPE"
	}
	return fmt.Sprintf("Model%s_%s_%s", r.Model.Base(), owner, DateCompact(r.SessionDate))
}

// RouteDir returns the slash-separated directory the record's artifact
// is filed under: students by identity then date, groups by date only.
func (r ModelRecord) RouteDir() string {
	if r.Scope == ScopeGroup {
		return path.Join("Groupe", DateDir(r.SessionDate))
	}
	return path.Join("Eleves", r.Player, DateDir(r.SessionDate))
}
