package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/robinvdvleuten/finboard/output"
)

// slowStage is the duration from which a stage is highlighted. Most of a
// run is spent waiting on hledger, so anything past this is worth a look.
const slowStage = 250 * time.Millisecond

// formatTimingTree writes the tree as:
//
//	generate: 640ms
//	├─ transform: 410ms
//	│  └─ hledger print: 380ms
//	└─ budgets: 230ms
func formatTimingTree(w io.Writer, root *timerNode, styles *output.Styles) {
	name := root.name
	if styles != nil {
		name = styles.Keyword(name)
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", name, formatDuration(root.duration()))

	for i, child := range root.children {
		formatNode(w, child, "", i == len(root.children)-1, styles)
	}
}

func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool, styles *output.Styles) {
	branch, extension := "├─ ", "│  "
	if isLast {
		branch, extension = "└─ ", "   "
	}

	duration := node.duration()
	timing := formatDuration(duration)
	tree := prefix + branch
	if styles != nil {
		tree = styles.Dim(tree)
		timing = styles.Timing(timing, duration >= slowStage)
	}
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", tree, node.name, timing)

	for i, child := range node.children {
		formatNode(w, child, prefix+extension, i == len(node.children)-1, styles)
	}
}

// formatDuration shows milliseconds below one second and seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
