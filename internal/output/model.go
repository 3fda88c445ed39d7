// Package output renders a Result to either the stable human text
// format or the versioned JSON object. Both writers share exactly one data
// model (this file) so a new field or refusal variant cannot drift between
// the two rendering paths.
package output

import (
	"github.com/cmdrvl/rvl/internal/csvio"
	"github.com/cmdrvl/rvl/internal/diff"
	"github.com/cmdrvl/rvl/internal/refusal"
)

// Outcome is the top-level verdict.
type Outcome int

const (
	RealChange Outcome = iota
	NoRealChange
	Refusal
)

// AlignmentMode names how rows were paired.
type AlignmentMode int

const (
	RowOrder AlignmentMode = iota
	KeyMode
)

// DialectInfo is the rendered view of a detected or forced dialect. Nil on
// a Result means the dialect was never determined (refusal happened first).
type DialectInfo struct {
	Delimiter byte
	Escape    csvio.EscapeMode
}

// Counts are the column/row/cell tallies shown in the Checked/Columns lines.
// A Result populates only the counts it actually computed before any
// refusal fired; the zero value (Known=false) renders as absent in JSON and
// is simply never reached in the human path (refusals use an abbreviated
// header that omits Columns/Checked).
type Counts struct {
	Known          bool
	CommonColumns  int
	OldOnlyColumns int
	NewOnlyColumns int
	Rows           int
	NumericColumns int
	Cells          int
}

// Metrics are the diff-engine outputs, populated for REAL_CHANGE and
// NO_REAL_CHANGE (partially) results.
type Metrics struct {
	TotalChange  *float64
	MaxAbsDelta  *float64
	TopKCoverage *float64
}

// ContributorView is one ranked contributor, in final display order.
type ContributorView struct {
	RowIDHuman      string
	RowIDJSON       string
	Column          string
	OldRaw          string
	NewRaw          string
	Delta           float64
	Contribution    float64
	Share           float64
	CumulativeShare float64
}

// MaxContributors is the fixed JSON `limits.max_contributors` value and the
// bound on how many contributors a REAL_CHANGE result ever carries.
const MaxContributors = diff.MaxContributors

// Result is the single shared data model rendered by both Human and JSON.
type Result struct {
	OldPath string
	NewPath string

	Threshold float64
	Tolerance float64

	Alignment AlignmentMode
	KeyColumn []byte // KeyMode only

	DialectOld *DialectInfo
	DialectNew *DialectInfo

	Counts Counts

	Outcome Outcome

	// RealChange / NoRealChange
	Cutoff       int
	Coverage     float64
	TotalChange  float64
	MaxAbsDelta  float64
	Contributors []ContributorView

	// Refusal
	RefusalDetail *refusal.Detail
}

// RerunPaths returns the (old, new) path pair used to build rerun commands.
func (r Result) RerunPaths() refusal.RerunPaths {
	return refusal.RerunPaths{Old: r.OldPath, New: r.NewPath}
}

// ExitCode maps the outcome to rvl's process exit code.
func (r Result) ExitCode() int {
	switch r.Outcome {
	case NoRealChange:
		return 0
	case RealChange:
		return 1
	default:
		return 2
	}
}
