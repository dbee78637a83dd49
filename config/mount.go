package config

// MountOptions holds high-level settings for mounting a folder tree.
// No go-fuse types are exposed here.
type MountOptions struct {
	Debug  bool   // fuse debug logs
	FsName string // mount's FsName
	Name   string // mount's Name
}

// StoreOptions selects the backend registered under Type in the adapters registry
type StoreOptions struct {
	Type string // "memory" or "snapshot"
	Path string // snapshot file; unused by the memory backend
}
