package tilefs

// NodeRequest describes a node to provision. It is passed from entrypoints
// (cli, definition files) to the filesystem Open methods.
type NodeRequest struct {
	ID        string // Correlates log lines for one request
	Path      string
	Hidden    bool
	Temporary bool
	// Content is appended to a file's history after it is opened.
	// Ignored for folders.
	Content *string
}
