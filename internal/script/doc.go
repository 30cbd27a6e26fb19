// Package script runs Lua scripts against the data URI toolkit.
//
// Scripts execute in a gopher-lua state with only the base, table, string
// and math libraries opened. The file loading functions are removed and
// require resolves nothing but the preloaded "urilens" module, which is
// also available as the global urilens:
//
//	local urilens = require("urilens")
//	for _, m in ipairs(urilens.match(text)) do
//	    print(m.start, m.stop, m.media_type, urilens.is_image(m.uri))
//	end
//
// Module functions:
//
//	match(text)     -> array of {start, stop, uri, media_type, params, payload, image}
//	encode(path)    -> uri | nil, err
//	decode(uri)     -> media_type, data | nil, err
//	is_image(uri)   -> bool
//	info(uri)       -> {media_type, format, width, height, size} | nil, err
//
// Offsets in match results are 1-based and inclusive, so
// text:sub(m.start, m.stop) == m.uri.
package script
