package git

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	// Match progress lines like:
	// Receiving objects:  45% (23832/52960), 156.91 MiB | 78.45 MiB/s
	// Counting objects: 100% (3/3)
	progressRegex = regexp.MustCompile(`(Enumerating objects|Counting objects|Compressing objects|Receiving objects|Resolving deltas):\s*(\d+)%\s*\((\d+)/(\d+)\)(?:,\s*([\d.]+)\s*([^|]+)\|\s*([\d.]+)\s*([^,\n]+))?`)
	// Match completion lines like:
	// Receiving objects: 100% (52960/52960), 298.63 MiB | 81.39 MiB/s, done.
	completionRegex = regexp.MustCompile(`(Receiving objects|Resolving deltas):\s*100%.*,\s*([\d.]+)\s*([^|,]+?)\s*(?:\|.*)?,\s*done`)
)

// ProgressWriter reformats git sideband progress into one short line per update
type ProgressWriter struct {
	prefix string
	w      io.Writer
	last   string
}

// NewProgressWriter returns a writer that prefixes each line with prefix
func NewProgressWriter(prefix string, w io.Writer) *ProgressWriter {
	return &ProgressWriter{prefix: prefix, w: w}
}

func (pw *ProgressWriter) Write(p []byte) (int, error) {
	lines := strings.FieldsFunc(string(p), func(r rune) bool { return r == '\n' || r == '\r' })
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimPrefix(line, "remote: "))
		if line == "" {
			continue
		}
		out := pw.format(line)
		// Sideband repeats the same percentage many times
		if out == pw.last {
			continue
		}
		pw.last = out
		fmt.Fprintf(pw.w, "%s%s\n", pw.prefix, out)
	}
	return len(p), nil
}

func (pw *ProgressWriter) format(line string) string {
	if m := completionRegex.FindStringSubmatch(line); m != nil {
		return fmt.Sprintf("%s: 100%% (Total size: %s %s)", m[1], m[2], strings.TrimSpace(m[3]))
	}
	if m := progressRegex.FindStringSubmatch(line); m != nil {
		if m[5] != "" {
			return fmt.Sprintf("%s: %s%% (%s/%s) Size: %s %s, Speed: %s %s",
				m[1], m[2], m[3], m[4], m[5], strings.TrimSpace(m[6]), m[7], strings.TrimSpace(m[8]))
		}
		return fmt.Sprintf("%s: %s%% (%s/%s)", m[1], m[2], m[3], m[4])
	}
	return line
}
