package match

import (
	"regexp"
	"strings"
)

// Scheme is the literal, case-sensitive prefix every data URI starts with.
const Scheme = "data:"

// ImagePrefix is the prefix of data URIs that carry an image payload.
const ImagePrefix = "data:image/"

// Pattern is the data URI grammar.
//
// Group 1 is the optional media type, group 2 the parameter segments and
// group 3 the payload. The trailing terminator is consumed by the
// expression but excluded from the region; it can never begin another
// URI, so consuming it does not hide a following match.
const Pattern = `data:((?:[\p{L}\p{N}_]+/[^;,\n]+)?)((?:;[\w\W]*?[^;])*),(.+?)(?:[\s\v\p{Z}"]|$)`

var dataURIRegex = regexp.MustCompile(Pattern)

// Find returns every data URI region in text, ordered by start offset.
// Text without a match yields an empty (nil) slice.
func Find(text string) []Region {
	if !strings.Contains(text, Scheme) {
		return nil
	}

	locs := dataURIRegex.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	regions := make([]Region, 0, len(locs))
	for _, loc := range locs {
		// loc[6:8] bounds the payload group.
		regions = append(regions, Region{Start: loc[0], End: loc[7]})
	}
	return regions
}

// Match is a located data URI with its grammar parts split out.
type Match struct {
	Region    Region
	URI       string
	MediaType string
	Params    string
	Payload   string
}

// IsImage returns true if the match carries an image media type.
func (m Match) IsImage() bool {
	return IsImage(m.URI)
}

// FindMatches is like Find but also returns the text of each part.
func FindMatches(text string) []Match {
	if !strings.Contains(text, Scheme) {
		return nil
	}

	locs := dataURIRegex.FindAllStringSubmatchIndex(text, -1)
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		r := Region{Start: loc[0], End: loc[7]}
		matches = append(matches, Match{
			Region:    r,
			URI:       r.Text(text),
			MediaType: text[loc[2]:loc[3]],
			Params:    text[loc[4]:loc[5]],
			Payload:   text[loc[6]:loc[7]],
		})
	}
	return matches
}

// IsImage returns true if uri starts with the image data URI prefix.
func IsImage(uri string) bool {
	return strings.HasPrefix(uri, ImagePrefix)
}
