// Package detect watches buffers for embedded data URIs and answers hovers
// over them with preview requests.
//
// A Manager owns one Observer per applicable buffer. Each Observer has its
// own pending counter (inside a debounce.Debouncer) and its own entry in the
// shared region store; nothing is shared between buffers except the store's
// map itself.
//
// Flow:
//
//	Open / Modified ──► Observer.Notify ──► (delay) ──► scan
//	                                                    │
//	                             match.Find(text) ◄─────┘
//	                                    │
//	                      store.Replace + Highlighter.SetRegions
//
//	Hover ──► hover.Resolver ──► store.Get ──► Previewer.ShowPreview
//
// Nothing in the scan or hover path is allowed to panic into the host: scan
// panics leave the previous regions published, hover panics yield no
// preview.
package detect
