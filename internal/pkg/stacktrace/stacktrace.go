// Package stacktrace condenses raw panic stacks into the frames that matter.
package stacktrace

import "strings"

// InternalPaths filters a raw runtime stack down to file:line entries from
// this repository's internal packages, in call order. The recover middleware
// logs these instead of the full multi-screen trace.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines))

	// runtime stacks alternate function lines with "\tfile.go:line +0x..."
	// lines; only the file lines carry what we want.
	for i := 0; i < len(lines)-1; i++ {
		line := strings.TrimSpace(lines[i+1])

		idx := strings.Index(line, ".go:")
		if idx == -1 || !strings.Contains(line, "/internal/") {
			continue
		}

		end := strings.Index(line[idx:], " ")
		if end == -1 {
			end = len(line)
		} else {
			end += idx
		}

		short := line[:end]
		if internalIdx := strings.Index(short, "/internal/"); internalIdx != -1 {
			paths = append(paths, short[internalIdx+1:])
		}
	}
	return paths
}
