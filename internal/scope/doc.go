// Package scope decides which buffers the data URI detector observes.
//
// Every buffer has a syntax, and every syntax a base scope such as
// "source.css" or "text.html.basic". The detector is active for a buffer
// only if its syntax scope scores above zero against at least one of the
// configured selectors. An empty selector list disables detection
// everywhere.
//
// Selectors follow the usual scope selector shape:
//
//	source.css                 prefix match on dot-separated atoms
//	text.html source.css       descendant path through a scope stack
//	source.css, text.html      alternatives (',' or '|')
//	text - text.plain          exclusion
package scope
