package proxy

// ActionAttribute holds the metadata shared by all action kinds.
type ActionAttribute struct {
	// Name is the display name. It must not be empty.
	Name string

	// Resources tells that Name is a resource key of the module.
	Resources bool
}

// CommandAttribute declares a command action.
type CommandAttribute struct {
	ActionAttribute

	// Prefix is the command line prefix, e.g. "ps" for "ps: <text>".
	Prefix string
}

// EditorAttribute declares an editor hook.
type EditorAttribute struct {
	ActionAttribute

	// Mask selects the files the hook applies to. Empty matches all files.
	Mask string
}

// FilerAttribute declares a file handler.
type FilerAttribute struct {
	ActionAttribute

	// Mask selects the files the handler opens. Empty matches all files.
	Mask string

	// Creates tells that the handler can create new files.
	Creates bool
}

// ToolAttribute declares a menu tool.
type ToolAttribute struct {
	ActionAttribute

	// Options tells which menus show the tool.
	Options ToolOptions
}
