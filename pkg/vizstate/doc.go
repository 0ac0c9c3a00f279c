// Package vizstate implements the hierarchical visibility model behind
// interactive dataflow graph views.
//
// A [State] holds nodes, edges, and nested containers, and tracks which of
// them are currently visible. Collapsing a container hides its whole subtree
// and replaces the edges crossing the container boundary with synthesized
// hyperedges; expanding reverses the operation exactly. The model guarantees
// that collapse followed by expand restores the prior state, in any
// interleaving with collapses and expands of sibling or ancestor containers.
//
// # Structure
//
// Three index layers back the public operations:
//
//   - entity maps: nodes, edges, containers, hyperedges keyed by id
//   - adjacency index: node id → edge ids touching it
//   - containment index: child id → direct parent, parent id → children
//
// Both indexes are kept consistent within every mutating call; there is no
// deferred or eventual repair step. Hyperedge membership is tracked per
// original edge, so a collapse only touches the edges adjacent to the
// collapsed subtree rather than the full edge set.
//
// # Visibility
//
// An entity is hidden exactly when some ancestor container in its containment
// chain is collapsed. A collapsed container itself stays visible and acts as
// the proxy for its subtree; edges crossing its boundary terminate at the
// nearest visible ancestor of their hidden endpoint.
//
// # Concurrency
//
// State is single-threaded and never blocks. Callers are responsible for
// serializing access; independent State instances do not interact.
package vizstate
