package requests

// NodeRequestDTO is the file representation of [tilefs.NodeRequest]
type NodeRequestDTO struct {
	Path string  `json:"path" yaml:"path"`
	ID   *string `json:"id,omitempty" yaml:"id,omitempty"` // Optional id to correlate logs (Default random uuid)
	// Hidden nodes are not linked into their parent folder
	Hidden    *bool `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Temporary *bool `json:"temporary,omitempty" yaml:"temporary,omitempty"`
	// Content is appended to a file's history. Not allowed on folders.
	Content *string `json:"content,omitempty" yaml:"content,omitempty"`
}
