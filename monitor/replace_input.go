package monitor

// inputPlaceholder is the argv token that stands in for the input
// file path; any occurrence in args is replaced with inputPath,
// otherwise the caller is expected to pipe the input via standard
// input instead.
const inputPlaceholder = "@@"

// ReplaceInput substitutes every "@@" argument with inputPath and
// reports whether a substitution happened, so a caller knows whether
// it still needs to pipe the input over stdin.
func ReplaceInput(args []string, inputPath string) (substituted []string, usedPlaceholder bool) {
	out := make([]string, len(args))
	for i, a := range args {
		if a == inputPlaceholder {
			out[i] = inputPath
			usedPlaceholder = true
			continue
		}
		out[i] = a
	}
	return out, usedPlaceholder
}
