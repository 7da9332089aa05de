// Package debug gates verbose pretty-printed diagnostics behind the
// KVNAV_DEBUG environment variable. cmd/kvnav uses it to dump the resolved
// connection at startup; nothing else calls it today.
package debug

import (
	"fmt"
	"os"

	"github.com/kylelemons/godebug/pretty"
)

// enabled mirrors the teacher's debugLibrary global toggle, set once from
// the environment at process start.
var enabled = os.Getenv("KVNAV_DEBUG") != ""

// Enabled reports whether debug output is turned on.
func Enabled() bool { return enabled }

// Printf prints format and args Printf-style if debug output is enabled. A trailing
// newline is added.
func Printf(format string, args ...interface{}) {
	if !enabled {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Dump pretty-prints v with a label if debug output is enabled, using
// kylelemons/godebug/pretty for a readable struct dump.
func Dump(label string, v interface{}) {
	if !enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", label, pretty.Sprint(v))
}
