// Package match locates data URIs inside buffer text.
//
// A data URI is recognised by the grammar
//
//	data:[<type>/<subtype>][;<param>]*,<payload>
//
// where the payload runs up to the next whitespace, double quote, or the
// end of the text. Matching is a single left-to-right pass over the whole
// text and yields non-overlapping regions ordered by start offset.
//
// The grammar is deliberately loose: parameters may contain any
// character, and nothing beyond the "data:" scheme is validated.
package match
