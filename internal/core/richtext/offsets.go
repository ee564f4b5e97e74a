package richtext

import (
	"fmt"
	"unicode/utf8"
)

// Indexer maps character (rune) positions in a text to UTF-8 byte offsets.
// Facet indices are serialized as byte offsets, so every span that leaves this
// package goes through an Indexer.
type Indexer struct {
	text string
	// bounds[i] is the byte offset where character i starts; the final entry
	// is len(text).
	bounds []int
}

// NewIndexer precomputes rune boundaries for text.
func NewIndexer(text string) *Indexer {
	bounds := make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		bounds = append(bounds, i)
	}
	bounds = append(bounds, len(text))
	return &Indexer{text: text, bounds: bounds}
}

// Len returns the number of characters in the text.
func (ix *Indexer) Len() int {
	return len(ix.bounds) - 1
}

// ByteLen returns the UTF-8 length of the text.
func (ix *Indexer) ByteLen() int {
	return len(ix.text)
}

// ByteOffset returns the byte offset of the character at charIndex.
// charIndex may equal Len() to address the end of the text.
func (ix *Indexer) ByteOffset(charIndex int) (int, error) {
	if charIndex < 0 || charIndex >= len(ix.bounds) {
		return 0, fmt.Errorf("%w: character index %d outside [0, %d]", ErrInvalidOffset, charIndex, ix.Len())
	}
	return ix.bounds[charIndex], nil
}

// CharIndex returns the character position that starts at byteOffset.
func (ix *Indexer) CharIndex(byteOffset int) (int, error) {
	if !ix.onBoundary(byteOffset) {
		return 0, fmt.Errorf("%w: byte offset %d is not a character boundary", ErrInvalidOffset, byteOffset)
	}
	// bounds is strictly increasing
	lo, hi := 0, len(ix.bounds)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case ix.bounds[mid] == byteOffset:
			return mid, nil
		case ix.bounds[mid] < byteOffset:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return 0, fmt.Errorf("%w: byte offset %d not found", ErrInvalidOffset, byteOffset)
}

// Span converts the character range [charStart, charEnd) to a byte range.
func (ix *Indexer) Span(charStart, charEnd int) (ByteSlice, error) {
	if charStart >= charEnd {
		return ByteSlice{}, fmt.Errorf("%w: empty character range [%d, %d)", ErrInvalidOffset, charStart, charEnd)
	}
	start, err := ix.ByteOffset(charStart)
	if err != nil {
		return ByteSlice{}, err
	}
	end, err := ix.ByteOffset(charEnd)
	if err != nil {
		return ByteSlice{}, err
	}
	return ByteSlice{ByteStart: start, ByteEnd: end}, nil
}

// SliceFromMatch validates a regexp match location (a [start, end) byte pair
// as returned by the regexp package) and converts it to a ByteSlice.
func (ix *Indexer) SliceFromMatch(loc []int) (ByteSlice, error) {
	if len(loc) < 2 {
		return ByteSlice{}, fmt.Errorf("%w: match location needs two offsets", ErrInvalidOffset)
	}
	start, end := loc[0], loc[1]
	if start >= end {
		return ByteSlice{}, fmt.Errorf("%w: empty match [%d, %d)", ErrInvalidOffset, start, end)
	}
	if !ix.onBoundary(start) || !ix.onBoundary(end) {
		return ByteSlice{}, fmt.Errorf("%w: match [%d, %d) splits a character", ErrInvalidOffset, start, end)
	}
	return ByteSlice{ByteStart: start, ByteEnd: end}, nil
}

func (ix *Indexer) onBoundary(offset int) bool {
	if offset < 0 || offset > len(ix.text) {
		return false
	}
	if offset == len(ix.text) {
		return true
	}
	return utf8.RuneStart(ix.text[offset])
}
