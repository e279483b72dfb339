// Package version records build metadata for the livectl binary.
package version

// Populated at build time via -ldflags "-X ...".
var (
	Version = "0.1.0"
	Commit  = ""
	Date    = ""
)

// String renders the one-line banner printed by `livectl version`.
func String() string {
	s := "livectl v" + Version
	if Commit != "" {
		c := Commit
		if len(c) > 7 {
			c = c[:7]
		}
		s += " (" + c + ")"
	}
	if Date != "" {
		s += ", built " + Date
	}
	return s
}
