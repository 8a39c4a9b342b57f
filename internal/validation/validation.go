// Package validation names the diagnostic codes the distribution core
// and its host surface use to classify a run's errors and defaulting
// decisions (spec §7). It deliberately carries no machinery beyond the
// codes themselves: every diagnostic the core raises maps to exactly
// one typed error in internal/entity or one counted condition in the
// Result Envelope, so there is nothing here for a collector type to
// accumulate.
package validation

// KnownCodes is the distribution run error/diagnostic taxonomy (spec §7).
const (
	// CodeSnapshotUnavailable marks a failed Snapshot Loader read (§4.3,
	// §7). Fatal: the run aborts before any mutation.
	CodeSnapshotUnavailable = "SNAPSHOT_UNAVAILABLE"

	// CodeInvariantViolation marks a commit that would break I1–I3
	// (§3, §7). Fatal: should never occur in a correct build.
	CodeInvariantViolation = "INVARIANT_VIOLATION"

	// CodePersistenceFailure marks one or more assignment writes that
	// failed after retry (§4.7, §7). Non-fatal: the envelope is still
	// returned, degraded, with the unpersisted subset listed.
	CodePersistenceFailure = "PERSISTENCE_FAILURE"

	// CodeEmptySnapshot is not an error: it marks a normal envelope
	// with zero counts because the pending-studies or on-shift-doctors
	// snapshot was empty (§4.8, §7).
	CodeEmptySnapshot = "EMPTY_SNAPSHOT"

	// CodeMalformedStudy marks a study record dropped entirely at the
	// Snapshot Loader boundary (missing id) rather than defaulted; it
	// is counted under `unassigned` (§7, §9).
	CodeMalformedStudy = "MALFORMED_STUDY"

	// CodeModalityDefaulted marks a study or doctor whose modality
	// field was null or unparseable and was defaulted to the empty
	// (wildcard) set (§9).
	CodeModalityDefaulted = "MODALITY_DEFAULTED"

	// CodeCreatedAtDefaulted marks a study whose created_at was null
	// and was defaulted to the run's captured "now" (§9, B2).
	CodeCreatedAtDefaulted = "CREATED_AT_DEFAULTED"

	// CodeUpValueDefaulted marks a study whose up_value was null or
	// zero and was defaulted to 1.0 (§9, B3).
	CodeUpValueDefaulted = "UP_VALUE_DEFAULTED"
)
