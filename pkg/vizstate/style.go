package vizstate

// AggregateStyle folds the styles of several original edges into the single
// representative style for their hyperedge. Priority is fixed:
// warning > thick > highlighted > plain. The function is pure; callers
// recompute it whenever the contributing edge set changes.
func AggregateStyle(styles []EdgeStyle) EdgeStyle {
	out := StylePlain
	for _, st := range styles {
		if st > out {
			out = st
		}
	}
	return out
}
