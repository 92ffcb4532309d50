package aggregate

import (
	"sort"

	"s3dirstat/internal/models"
)

// SortedChildren orders children by descending size, then name.
func SortedChildren(n *models.TreeNode) []*models.TreeNode {
	children := make([]*models.TreeNode, 0, len(n.Children))
	for _, child := range n.Children {
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].Size != children[j].Size {
			return children[i].Size > children[j].Size
		}
		return children[i].Name < children[j].Name
	})
	return children
}

type ExtensionEntry struct {
	Extension string `json:"extension"`
	models.ExtensionStat
}

// TopExtensions returns up to n extension stats by descending size; n <= 0 returns all.
func TopExtensions(node *models.TreeNode, n int) []ExtensionEntry {
	entries := make([]ExtensionEntry, 0, len(node.Extensions))
	for ext, stat := range node.Extensions {
		entries = append(entries, ExtensionEntry{Extension: ext, ExtensionStat: *stat})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Size != entries[j].Size {
			return entries[i].Size > entries[j].Size
		}
		return entries[i].Extension < entries[j].Extension
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
