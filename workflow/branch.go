package workflow

// Label is the tagged variant a branch decision returns. Labels are matched
// against the branch's destination table, which Compile validates, so routing
// never falls back to ad-hoc string comparison at run time.
type Label string

// BranchFunc decides which label a run follows after the branch's source step
// completes. It is evaluated against the just-updated state.
//
// Decisions must be pure with respect to state and deterministic: identical
// state content yields the identical label on every evaluation. Returning an
// error aborts the run; returning a label absent from the branch's destination
// table aborts the run with a BranchError.
type BranchFunc[S any] func(state S) (Label, error)

// branch is the conditional route owned by a single source step.
type branch[S any] struct {
	decide       BranchFunc[S]
	destinations map[Label]string
}

// route is the single outgoing route of a non-terminal step. Exactly one of
// the fields is set: to for an unconditional edge, branch for a conditional
// one. Steps without a route are terminal.
type route[S any] struct {
	to     string
	branch *branch[S]
}
