// Package chunk splits long inputs into bounded sequential pieces. Text
// splitting prefers sentence boundaries so each piece reads as a coherent
// excerpt; audio splitting snaps cut points onto detected silences so no
// utterance is cut mid-word.
package chunk

// Piece is a contiguous slice of a transcript produced by SplitText.
// Indices are zero-based and sequential; Offset is the byte position of
// the piece within the source text.
type Piece struct {
	Index  int
	Offset int
	Text   string
}

// Span is a half-open time range [Start, End) within a recording, in seconds.
type Span struct {
	Index int
	Start float64
	End   float64
}

// Duration returns the span length in seconds.
func (s Span) Duration() float64 {
	return s.End - s.Start
}
