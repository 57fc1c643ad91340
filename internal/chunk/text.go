package chunk

import (
	"strings"
	"unicode/utf8"
)

// Sentence terminators checked in order when choosing a cut point. The
// separator stays with the piece that ends the sentence.
var sentenceBoundaries = []string{". ", ".\n", "? ", "?\n", "! ", "!\n"}

// SplitText divides text into sequential pieces of at most maxChars bytes.
// Cut points prefer, in order, a sentence end, a paragraph break, the last
// space, and finally a hard cut on a rune boundary. Whitespace-only input
// yields no pieces; interior whitespace runs stay attached to the piece
// that follows them (trailing ones to the last piece), so concatenating
// the pieces in index order reproduces the input exactly. A piece that
// absorbed a whitespace run may exceed maxChars by that run's length.
// A non-positive maxChars returns the whole text as a single piece.
func SplitText(text string, maxChars int) []Piece {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if maxChars <= 0 || len(text) <= maxChars {
		return []Piece{{Index: 0, Text: text}}
	}

	var cuts []string
	remaining := text
	for len(remaining) > maxChars {
		cut := cutPoint(remaining, maxChars)
		cuts = append(cuts, remaining[:cut])
		remaining = remaining[cut:]
	}
	if remaining != "" {
		cuts = append(cuts, remaining)
	}

	var pieces []Piece
	offset := 0
	carry := ""
	for _, cut := range cuts {
		if strings.TrimSpace(cut) == "" {
			carry += cut
			continue
		}
		piece := carry + cut
		pieces = append(pieces, Piece{Index: len(pieces), Offset: offset, Text: piece})
		offset += len(piece)
		carry = ""
	}
	if carry != "" && len(pieces) > 0 {
		pieces[len(pieces)-1].Text += carry
	}
	return pieces
}

// cutPoint returns the byte offset at which to cut text so the first piece
// stays within maxChars. Always returns a value in (0, maxChars].
func cutPoint(text string, maxChars int) int {
	limit := runeFloor(text, maxChars)
	window := text[:limit]

	best := -1
	for _, boundary := range sentenceBoundaries {
		if idx := strings.LastIndex(window, boundary); idx >= 0 {
			end := idx + len(boundary)
			if end > best {
				best = end
			}
		}
	}
	if best > 0 {
		return best
	}

	if idx := strings.LastIndex(window, "\n\n"); idx > 0 {
		return idx + 2
	}

	if idx := strings.LastIndexByte(window, ' '); idx > 0 {
		return idx + 1
	}

	return limit
}

// runeFloor returns the largest offset <= max that does not split a rune.
func runeFloor(text string, max int) int {
	if max >= len(text) {
		return len(text)
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	if max == 0 {
		// Degenerate input, cut the first rune whole.
		_, size := utf8.DecodeRuneInString(text)
		return size
	}
	return max
}
