package richtext

import (
	"errors"
	"strings"

	"github.com/bluesky-social/indigo/atproto/syntax"
)

// Lexicon type identifiers for app.bsky.richtext.facet
const (
	FacetType   = "app.bsky.richtext.facet"
	MentionType = "app.bsky.richtext.facet#mention"
	LinkType    = "app.bsky.richtext.facet#link"
	TagType     = "app.bsky.richtext.facet#tag"
)

// ErrInvalidOffset is returned when a character or byte position does not
// address a valid location in the text.
var ErrInvalidOffset = errors.New("invalid text offset")

// allowedLinkSchemes lists the URI schemes a link feature may carry.
var allowedLinkSchemes = []string{"http://", "https://"}

// ByteSlice is a half-open [ByteStart, ByteEnd) range over the UTF-8 encoding
// of the post text. Matches app.bsky.richtext.facet#byteSlice.
type ByteSlice struct {
	ByteStart int `json:"byteStart"`
	ByteEnd   int `json:"byteEnd"`
}

// Feature is one semantic annotation of a facet. Exactly one of DID, URI or
// Tag is set, selected by Type.
type Feature struct {
	Type string `json:"$type"`
	DID  string `json:"did,omitempty"`
	URI  string `json:"uri,omitempty"`
	Tag  string `json:"tag,omitempty"`
}

// Facet annotates a span of post text.
type Facet struct {
	Type     string    `json:"$type"`
	Index    ByteSlice `json:"index"`
	Features []Feature `json:"features"`
}

// NewMention builds a mention facet over span.
func NewMention(span ByteSlice, did string) Facet {
	return newFacet(span, Feature{Type: MentionType, DID: did})
}

// NewLink builds a link facet over span.
func NewLink(span ByteSlice, uri string) Facet {
	return newFacet(span, Feature{Type: LinkType, URI: uri})
}

// NewTag builds a hashtag facet over span. tag is stored without the leading '#'.
func NewTag(span ByteSlice, tag string) Facet {
	return newFacet(span, Feature{Type: TagType, Tag: tag})
}

func newFacet(span ByteSlice, feature Feature) Facet {
	return Facet{
		Type:     FacetType,
		Index:    span,
		Features: []Feature{feature},
	}
}

// Valid reports whether the feature payload passes its type-specific check.
func (f Feature) Valid() bool {
	switch f.Type {
	case MentionType:
		if f.DID == "" {
			return false
		}
		_, err := syntax.ParseDID(f.DID)
		return err == nil
	case LinkType:
		if f.URI == "" {
			return false
		}
		lower := strings.ToLower(f.URI)
		for _, scheme := range allowedLinkSchemes {
			if strings.HasPrefix(lower, scheme) && len(lower) > len(scheme) {
				return true
			}
		}
		return false
	case TagType:
		return f.Tag != "" && !strings.HasPrefix(f.Tag, "#")
	default:
		return false
	}
}

// ValidFor reports whether the facet can be attached to text: the span lies
// inside the text and every feature is valid.
func (f Facet) ValidFor(textByteLen int) bool {
	if f.Index.ByteStart < 0 || f.Index.ByteStart >= f.Index.ByteEnd || f.Index.ByteEnd > textByteLen {
		return false
	}
	if len(f.Features) == 0 {
		return false
	}
	for _, feature := range f.Features {
		if !feature.Valid() {
			return false
		}
	}
	return true
}

// ValidateFacets returns the facets that are valid for text, preserving order.
// Invalid facets are dropped, never reported.
func ValidateFacets(text string, facets []Facet) []Facet {
	valid := make([]Facet, 0, len(facets))
	for _, f := range facets {
		if f.ValidFor(len(text)) {
			valid = append(valid, f)
		}
	}
	return valid
}
