package diagnostics

import (
	"io"

	"github.com/bradleyjkemp/memviz"
)

// DumpGraph writes a Graphviz DOT rendering of v's in-memory object graph
// to w: every struct field, slice element, and pointer followed and drawn
// as a node. Useful for inspecting the scheduler's live entry set or a
// System's peripheral wiring without adding bespoke introspection methods
// to either.
func DumpGraph(w io.Writer, v interface{}) {
	memviz.Map(w, v)
}
