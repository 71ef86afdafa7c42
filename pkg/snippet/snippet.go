// Package snippet holds the snippet data model and the on-disk library that
// feeds the detector. The detector itself never touches persistence; hosts
// load a library, hand its snippets to the engine and reload on change.
package snippet

// Snippet pairs a trigger with the content it expands to. Content is opaque
// payload data, never interpreted by the detection engine.
type Snippet struct {
	Trigger string `toml:"trigger" msgpack:"t"`
	Content string `toml:"content" msgpack:"c"`
}
