package focus

import (
	"strings"
	"unicode/utf8"
)

// sentinelLine is the device's end-of-response marker, echoed into the
// stream as a line of its own and stripped during normalization.
const sentinelLine = "."

// Normalize converts raw reply bytes into the clean textual reply.
//
// Invalid UTF-8 sequences are replaced with the Unicode replacement
// character rather than rejected, so normalization never fails. Lines are
// split on LF, tolerating CRLF endings; empty lines and the "." sentinel
// line are dropped; the survivors are rejoined with a single newline and no
// trailing separator. A malformed or absent reply is indistinguishable from
// an empty one: both normalize to "".
func Normalize(raw []byte) string {
	text := strings.ToValidUTF8(string(raw), string(utf8.RuneError))

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if line == "" || line == sentinelLine {
			continue
		}

		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}
