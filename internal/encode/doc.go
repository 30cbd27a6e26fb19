// Package encode converts files to data URIs and data URIs back to bytes.
//
// Files whose media type is not text/* are base64 encoded:
//
//	data:image/png;base64,iVBORw0KGgo...
//
// Text files are percent-encoded, keeping only unreserved characters and '/':
//
//	data:text/css,body%20%7B%20color%3A%20red%3B%20%7D
package encode
