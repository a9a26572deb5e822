// Package sanitize cleans captured terminal output for plain-text viewing.
//
// Raw build logs keep everything the child processes wrote, including color
// codes and the carriage returns spinners use to redraw themselves. The
// functions here turn that into something readable without touching the file
// on disk.
package sanitize

import (
	"iter"
	"strings"
)

const (
	escape = '\x1b'
	csi    = '['
)

type scanState int

const (
	stateNormal scanState = iota
	stateEscape           // saw ESC, waiting for the introducer
	stateCSI              // inside ESC[, waiting for the final letter
)

// Runes yields the runes of text with control sequences and carriage returns
// removed. It makes one forward pass and never looks back.
func Runes(text string) iter.Seq[rune] {
	return func(yield func(rune) bool) {
		state := stateNormal
		for _, r := range text {
			switch state {
			case stateCSI:
				if isASCIILetter(r) {
					state = stateNormal
				}
				continue
			case stateEscape:
				if r == csi {
					state = stateCSI
					continue
				}
				// A bare ESC is dropped on its own; r is handled below.
				state = stateNormal
			}

			switch r {
			case escape:
				state = stateEscape
			case '\r':
			default:
				if !yield(r) {
					return
				}
			}
		}
	}
}

// StripControlSequences removes ANSI CSI sequences, stray ESC characters and
// carriage returns from text.
func StripControlSequences(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for r := range Runes(text) {
		b.WriteRune(r)
	}
	return b.String()
}

// CollapseProgress drops blank lines and repeated spinner frames.
//
// A progress line starts with "- " and ends with a period once trimmed. The
// first frame for a given message is rewritten to end in "..." and later
// frames for the same message are dropped. Every other line is kept, trimmed,
// in its original position. Each output line ends with a newline.
//
// Bullet points that happen to end in a period look exactly like spinner
// frames and are deduplicated the same way.
func CollapseProgress(text string) string {
	seen := make(map[string]struct{})
	var b strings.Builder

	for line := range strings.SplitSeq(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if isProgressLine(trimmed) {
			base := strings.TrimRight(trimmed, ".")
			if _, ok := seen[base]; ok {
				continue
			}
			seen[base] = struct{}{}
			b.WriteString(base)
			b.WriteString("...\n")
			continue
		}

		b.WriteString(trimmed)
		b.WriteByte('\n')
	}

	return b.String()
}

// Clean strips control sequences and then collapses progress frames.
func Clean(raw string) string {
	return CollapseProgress(StripControlSequences(raw))
}

func isProgressLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "- ") && strings.HasSuffix(trimmed, ".")
}

func isASCIILetter(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}
