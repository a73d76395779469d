// Package policy arbitrates row access for the intake store. Predicates are
// pure functions over the caller and the row; the engine holds no state and
// performs no I/O. Update and delete are not predicate-controlled at all:
// they require the elevated capability, which ordinary callers cannot obtain.
package policy

import (
	errors "github.com/edi-app/edi-intake/internal"
)

type Action string

const (
	ActionInsert Action = "insert"
	ActionSelect Action = "select"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Subject is the caller identity visible to predicates.
type Subject struct {
	UserID string
	Email  string
	Role   string
}

// Row is the slice of an applicant record predicates may inspect. Kept
// minimal so predicates cannot grow into business-rule validation.
type Row struct {
	ApplicantID string
	CollectedBy string
}

// Predicate admits or denies one action for one subject and row.
type Predicate func(subject Subject, row Row) bool

// AdmitAll is the shipped predicate for insert and select: any authenticated
// subject may write well-formed rows and read every row. Tightening happens
// by installing a different predicate, not by editing call sites.
func AdmitAll(Subject, Row) bool { return true }

// Capability authorizes the mutation path. It is deliberately an opaque
// struct rather than a role string so ordinary code cannot conjure one by
// comparison; only VerifiedService (or test wiring) mints an elevated value.
type Capability struct {
	elevated bool
}

func (c Capability) Elevated() bool { return c.elevated }

// VerifiedService mints the elevated capability. Callers must only do so
// after verifying a service-role credential.
func VerifiedService() Capability { return Capability{elevated: true} }

// Decision is the outcome of a predicate evaluation.
type Decision struct {
	Allowed bool
	Reason  string
}

type Engine struct {
	InsertPredicate Predicate
	SelectPredicate Predicate
}

// NewEngine returns an engine with the shipped permissive predicates.
func NewEngine() *Engine {
	return &Engine{
		InsertPredicate: AdmitAll,
		SelectPredicate: AdmitAll,
	}
}

func (e *Engine) Evaluate(action Action, subject Subject, row Row) Decision {
	switch action {
	case ActionInsert:
		if e.InsertPredicate != nil && e.InsertPredicate(subject, row) {
			return Decision{Allowed: true}
		}
		return Decision{Allowed: false, Reason: "insert predicate denied"}
	case ActionSelect:
		if e.SelectPredicate != nil && e.SelectPredicate(subject, row) {
			return Decision{Allowed: true}
		}
		return Decision{Allowed: false, Reason: "select predicate denied"}
	case ActionUpdate, ActionDelete:
		// No predicate exists for mutation; only the elevated capability
		// authorizes it, checked separately via AuthorizeMutation.
		return Decision{Allowed: false, Reason: "mutation requires the elevated capability"}
	default:
		return Decision{Allowed: false, Reason: "unknown action"}
	}
}

// Authorize turns a deny decision into the authorization error callers
// propagate unchanged to the transport boundary.
func (e *Engine) Authorize(action Action, subject Subject, row Row) error {
	if d := e.Evaluate(action, subject, row); !d.Allowed {
		return errors.ErrPolicyDenied
	}
	return nil
}

// AuthorizeMutation gates update and delete on capability possession. It
// never consults predicates or role strings.
func (e *Engine) AuthorizeMutation(capability Capability) error {
	if !capability.Elevated() {
		return errors.ErrElevationRequired
	}
	return nil
}
