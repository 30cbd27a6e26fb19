package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/urilens/internal/detect/match"
	"github.com/dshills/urilens/internal/encode"
	"github.com/dshills/urilens/internal/preview"
)

// module implements the urilens Lua module.
type module struct {
	encoder *encode.Encoder
}

func newModule(e *encode.Encoder) *module {
	return &module{encoder: e}
}

func (m *module) table(L *lua.LState) *lua.LTable {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"match":    m.match,
		"encode":   m.encode,
		"decode":   m.decode,
		"is_image": m.isImage,
		"info":     m.info,
	})
}

func (m *module) loader(L *lua.LState) int {
	L.Push(m.table(L))
	return 1
}

// match(text) -> {{start, stop, uri, media_type, params, payload, image}, ...}
func (m *module) match(L *lua.LState) int {
	text := L.CheckString(1)

	result := L.NewTable()
	for i, mt := range match.FindMatches(text) {
		t := L.NewTable()
		t.RawSetString("start", lua.LNumber(mt.Region.Start+1))
		t.RawSetString("stop", lua.LNumber(mt.Region.End))
		t.RawSetString("uri", lua.LString(mt.URI))
		t.RawSetString("media_type", lua.LString(mt.MediaType))
		t.RawSetString("params", lua.LString(mt.Params))
		t.RawSetString("payload", lua.LString(mt.Payload))
		t.RawSetString("image", lua.LBool(mt.IsImage()))
		result.RawSetInt(i+1, t)
	}
	L.Push(result)
	return 1
}

// encode(path) -> uri | nil, err
func (m *module) encode(L *lua.LState) int {
	uri, err := m.encoder.Encode(L.CheckString(1))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LString(uri))
	return 1
}

// decode(uri) -> media_type, data | nil, err
func (m *module) decode(L *lua.LState) int {
	mediaType, data, err := encode.Decode(L.CheckString(1))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LString(mediaType))
	L.Push(lua.LString(data))
	return 2
}

// is_image(uri) -> bool
func (m *module) isImage(L *lua.LState) int {
	L.Push(lua.LBool(match.IsImage(L.CheckString(1))))
	return 1
}

// info(uri) -> {media_type, format, width, height, size} | nil, err
func (m *module) info(L *lua.LState) int {
	info, err := preview.Probe(L.CheckString(1))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	t := L.NewTable()
	t.RawSetString("media_type", lua.LString(info.MediaType))
	t.RawSetString("format", lua.LString(info.Format))
	t.RawSetString("width", lua.LNumber(info.Width))
	t.RawSetString("height", lua.LNumber(info.Height))
	t.RawSetString("size", lua.LNumber(info.Size))
	L.Push(t)
	return 1
}
