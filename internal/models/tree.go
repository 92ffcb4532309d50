package models

import "time"

// ObjectRecord is one listed object. Keys are '/'-segmented.
type ObjectRecord struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// IsFolderMarker reports whether the key is a zero-content "directory" placeholder.
func (o ObjectRecord) IsFolderMarker() bool {
	return len(o.Key) > 0 && o.Key[len(o.Key)-1] == '/'
}

type ExtensionStat struct {
	Count int64 `json:"count"`
	Size  int64 `json:"size"`
}

// TreeNode is one path segment of a bucket. Size and FileCount aggregate the
// whole subtree; OwnSize and OwnFileCount only cover objects whose key
// terminates directly under this node.
type TreeNode struct {
	Name         string                    `json:"name"`
	Size         int64                     `json:"size"`
	OwnSize      int64                     `json:"own_size"`
	FileCount    int64                     `json:"file_count"`
	OwnFileCount int64                     `json:"own_file_count"`
	LastModified time.Time                 `json:"last_modified"`
	Children     map[string]*TreeNode      `json:"children"`
	Extensions   map[string]*ExtensionStat `json:"extensions"`
}

func NewTreeNode(name string) *TreeNode {
	return &TreeNode{
		Name:       name,
		Children:   make(map[string]*TreeNode),
		Extensions: make(map[string]*ExtensionStat),
	}
}

// Child returns the named child, creating it on first use.
func (n *TreeNode) Child(name string) *TreeNode {
	child, ok := n.Children[name]
	if !ok {
		child = NewTreeNode(name)
		n.Children[name] = child
	}
	return child
}

func (n *TreeNode) addExtension(ext string, size int64) {
	stat, ok := n.Extensions[ext]
	if !ok {
		stat = &ExtensionStat{}
		n.Extensions[ext] = stat
	}
	stat.Count++
	stat.Size += size
}

// Observe folds one object into this node's subtree aggregates.
func (n *TreeNode) Observe(ext string, size int64, modified time.Time) {
	n.Size += size
	n.FileCount++
	n.addExtension(ext, size)
	if modified.After(n.LastModified) {
		n.LastModified = modified
	}
}

// ObserveOwn records an object that terminates directly under this node.
func (n *TreeNode) ObserveOwn(size int64) {
	n.OwnSize += size
	n.OwnFileCount++
}
