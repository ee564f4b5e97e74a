// Package richtext extracts app.bsky.richtext.facet annotations (mentions,
// links and hashtags) from post text.
//
// All spans are UTF-8 byte offsets. Extraction never fails: handles that do
// not resolve, malformed links and numeric-only hashtags are left out of the
// result.
package richtext

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/purell"
)

// maxTagLength is the longest hashtag (without '#') that becomes a facet.
const maxTagLength = 64

var (
	// mentionPattern matches "@handle" at the start of the text or after
	// whitespace or an opening parenthesis. Group 1 is the "@handle" span.
	mentionPattern = regexp.MustCompile(`(?:^|\s|\()(@[a-zA-Z0-9.-]+)\b`)

	// linkPattern finds absolute http(s) URL candidates. Candidates are
	// ASCII only, so an emoji or CJK punctuation directly after a URL ends
	// it. Candidates are trimmed and parsed before they are accepted.
	linkPattern = regexp.MustCompile(`(?i)https?://[^\s<>"\x60{}|\\^\x{80}-\x{10FFFF}]+`)

	// hashtagPattern finds "#tag" runs. Preceding-character rules are checked
	// in code since RE2 has no lookbehind.
	hashtagPattern = regexp.MustCompile(`#([a-zA-Z0-9_]+)`)
)

// HandleResolver resolves a handle (without the leading '@') to a DID.
// Returning an error or an empty DID means the handle does not resolve.
type HandleResolver interface {
	ResolveHandle(ctx context.Context, handle string) (did string, err error)
}

// HandleResolverFunc adapts a function to HandleResolver.
type HandleResolverFunc func(ctx context.Context, handle string) (string, error)

// ResolveHandle calls f.
func (f HandleResolverFunc) ResolveHandle(ctx context.Context, handle string) (string, error) {
	return f(ctx, handle)
}

// Extractor scans post text for facets.
type Extractor struct {
	resolver HandleResolver
}

// NewExtractor creates an Extractor. A nil resolver disables mentions.
func NewExtractor(resolver HandleResolver) *Extractor {
	return &Extractor{resolver: resolver}
}

// ExtractFacets returns the validated facets of text ordered by ByteStart.
// Invalid facets are dropped before overlaps are resolved so they never
// displace a valid one.
func (e *Extractor) ExtractFacets(ctx context.Context, text string) []Facet {
	if text == "" {
		return []Facet{}
	}

	ix := NewIndexer(text)

	var facets []Facet
	facets = append(facets, e.mentions(ctx, ix, text)...)
	facets = append(facets, links(ix, text)...)
	facets = append(facets, hashtags(ix, text)...)

	return dropOverlaps(ValidateFacets(text, facets))
}

func (e *Extractor) mentions(ctx context.Context, ix *Indexer, text string) []Facet {
	if e.resolver == nil {
		return nil
	}

	resolved := make(map[string]string)
	var facets []Facet
	for _, m := range mentionPattern.FindAllStringSubmatchIndex(text, -1) {
		span, err := ix.SliceFromMatch(m[2:4])
		if err != nil {
			continue
		}
		handle := text[span.ByteStart+1 : span.ByteEnd]

		did, seen := resolved[handle]
		if !seen {
			did, err = e.resolver.ResolveHandle(ctx, handle)
			if err != nil {
				slog.Debug("[FACETS] mention not resolved", "handle", handle, "error", err)
				did = ""
			}
			resolved[handle] = did
		}
		if did == "" {
			continue
		}
		facets = append(facets, NewMention(span, did))
	}
	return facets
}

func links(ix *Indexer, text string) []Facet {
	var facets []Facet
	for _, loc := range linkPattern.FindAllStringIndex(text, -1) {
		candidate := trimLink(text[loc[0]:loc[1]])
		normalized, ok := normalizeLink(candidate)
		if !ok {
			continue
		}
		span, err := ix.SliceFromMatch([]int{loc[0], loc[0] + len(candidate)})
		if err != nil {
			continue
		}
		facets = append(facets, NewLink(span, normalized))
	}
	return facets
}

// trimLink strips sentence punctuation and unbalanced closing brackets that
// follow a URL in prose, e.g. "see (https://example.com)."
func trimLink(candidate string) string {
	for candidate != "" {
		last := candidate[len(candidate)-1]
		switch {
		case strings.IndexByte(".,;:!?'\"", last) >= 0:
			candidate = candidate[:len(candidate)-1]
		case last == ')' && strings.Count(candidate, "(") < strings.Count(candidate, ")"):
			candidate = candidate[:len(candidate)-1]
		case last == ']' && strings.Count(candidate, "[") < strings.Count(candidate, "]"):
			candidate = candidate[:len(candidate)-1]
		default:
			return candidate
		}
	}
	return candidate
}

// normalizeLink parses candidate and returns its canonical form. Only
// absolute http/https URLs with a host are accepted.
func normalizeLink(candidate string) (string, bool) {
	u, err := url.Parse(candidate)
	if err != nil {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}
	if u.Hostname() == "" {
		return "", false
	}
	if u.Path == "" && u.RawPath == "" {
		u.Path = "/"
	}
	return purell.NormalizeURL(u, purell.FlagsSafe), true
}

func hashtags(ix *Indexer, text string) []Facet {
	var facets []Facet
	for _, m := range hashtagPattern.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > 0 {
			prev, _ := utf8.DecodeLastRuneInString(text[:m[0]])
			if isWordRune(prev) || prev == '#' {
				continue
			}
		}
		if m[1] < len(text) {
			next, _ := utf8.DecodeRuneInString(text[m[1]:])
			if isWordRune(next) {
				continue
			}
		}

		tag := text[m[2]:m[3]]
		if isNumeric(tag) || len(tag) > maxTagLength {
			continue
		}

		span, err := ix.SliceFromMatch(m[0:2])
		if err != nil {
			continue
		}
		facets = append(facets, NewTag(span, tag))
	}
	return facets
}

// dropOverlaps sorts facets by start offset and removes any facet that
// overlaps one kept before it. On equal starts the longer span wins.
func dropOverlaps(facets []Facet) []Facet {
	sort.SliceStable(facets, func(i, j int) bool {
		a, b := facets[i].Index, facets[j].Index
		if a.ByteStart != b.ByteStart {
			return a.ByteStart < b.ByteStart
		}
		return a.ByteEnd > b.ByteEnd
	})

	kept := make([]Facet, 0, len(facets))
	end := 0
	for _, f := range facets {
		if len(kept) > 0 && f.Index.ByteStart < end {
			continue
		}
		kept = append(kept, f)
		end = f.Index.ByteEnd
	}
	return kept
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
