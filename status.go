package ticktree

// Status is the three-valued outcome every node reports.
//
// The zero value is deliberately invalid: Run returns it, with a nil
// error, only for the defensive no-op case (a zero-value Tree with
// nothing to evaluate), and hooks returning it are treated as a
// programming error.
type Status int

const (
	_ Status = iota
	// Running indicates the node has not completed and the tree must be
	// ticked again to make progress.
	Running
	// Success indicates the node completed successfully.
	Success
	// Failure indicates the node completed unsuccessfully.
	Failure
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}
