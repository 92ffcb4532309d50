// Package report renders an aggregated size tree as CSV, JSON or an
// indented text listing.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"s3dirstat/internal/aggregate"
	"s3dirstat/internal/models"
	"s3dirstat/pkg/utils"
)

const maxNameWidth = 60

// WriteCSV writes one "Path,Size" row per node, depth-first, larger children first.
func WriteCSV(w io.Writer, root *models.TreeNode) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Path", "Size"}); err != nil {
		return err
	}
	if err := writeCSVNode(cw, root, ""); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeCSVNode(cw *csv.Writer, node *models.TreeNode, parent string) error {
	current := node.Name
	if parent != "" {
		current = parent + "/" + node.Name
	}
	if err := cw.Write([]string{current, strconv.FormatInt(node.Size, 10)}); err != nil {
		return err
	}
	for _, child := range aggregate.SortedChildren(node) {
		if err := writeCSVNode(cw, child, current); err != nil {
			return err
		}
	}
	return nil
}

func WriteJSON(w io.Writer, root *models.TreeNode) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

type treeLine struct {
	label string
	node  *models.TreeNode
}

// WriteTree prints the tree down to depth levels below the root (depth <= 0
// means unlimited). Names are padded by display width so wide characters
// keep the size column aligned.
func WriteTree(w io.Writer, root *models.TreeNode, depth int) error {
	var lines []treeLine
	collectTree(&lines, root, 0, depth)

	width := 0
	for i := range lines {
		lines[i].label = runewidth.Truncate(lines[i].label, maxNameWidth, "…")
		width = max(width, runewidth.StringWidth(lines[i].label))
	}

	for _, line := range lines {
		share := 0.0
		if root.Size > 0 {
			share = float64(line.node.Size) / float64(root.Size) * 100
		}
		_, err := fmt.Fprintf(w, "%s  %10s  %5.1f%%  %d files\n",
			runewidth.FillRight(line.label, width),
			utils.FormatBytes(line.node.Size),
			share,
			line.node.FileCount,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func collectTree(lines *[]treeLine, node *models.TreeNode, level, depth int) {
	label := strings.Repeat("  ", level) + node.Name
	*lines = append(*lines, treeLine{label: label, node: node})
	if depth > 0 && level >= depth {
		return
	}
	for _, child := range aggregate.SortedChildren(node) {
		collectTree(lines, child, level+1, depth)
	}
}
