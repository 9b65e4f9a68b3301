package issuance

import "pipvc/internal/credential/models"

// Step identifies one stage of the issuance pipeline.
type Step string

const (
	StepResolve     Step = "resolve"
	StepWriteJSONLD Step = "write_jsonld"
	StepWriteTurtle Step = "write_turtle"
	StepIndex       Step = "index"
	StepGrants      Step = "grants"
)

// StepStatus is the outcome of a single pipeline step.
type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// Result reports what an issuance attempt actually did. It is populated
// incrementally, so even when Issue returns an error the result shows
// which steps completed before the failure.
type Result struct {
	CredentialID models.CredentialID `json:"credentialId"`

	// Root is the resolved (or overridden) pod storage root.
	Root string `json:"root,omitempty"`

	// Artifact locations inside the pod. Set once the step that writes
	// them has been attempted.
	JSONLDResource string `json:"jsonldResource,omitempty"`
	TurtleResource string `json:"turtleResource,omitempty"`

	// Steps maps each pipeline step to its outcome. Steps not yet
	// attempted are absent.
	Steps map[Step]StepStatus `json:"steps"`

	// IndexUpdated is false when the container index could not be
	// refreshed. The issuance still succeeded.
	IndexUpdated bool `json:"indexUpdated"`

	// GrantsWritten is false when one or more access-control documents
	// could not be written; GrantError carries the cause.
	GrantsWritten bool   `json:"grantsWritten"`
	GrantError    string `json:"grantError,omitempty"`

	// Degraded is true when the issuance succeeded but a non-fatal side
	// effect (index, grants, registry record) did not complete.
	Degraded bool `json:"degraded"`
}

func newResult(credentialID models.CredentialID) *Result {
	return &Result{
		CredentialID: credentialID,
		Steps:        make(map[Step]StepStatus, 5),
	}
}

func (r *Result) mark(step Step, status StepStatus) {
	r.Steps[step] = status
}
