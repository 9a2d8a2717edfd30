// Package folder derives a parent/child folder hierarchy from a crawled
// node set.
package folder

import (
	"sort"

	"github.com/3leaps/pagecrate/pkg/crawler"
)

// Folder is one directory in the derived hierarchy. Children are
// appended only during Build and frozen afterwards.
type Folder struct {
	ID       string
	Name     string
	ParentID string // empty only for the crawl root
	Children []string
}

// Build converts a crawled node set into a folder tree keyed by id, with
// exactly one root equal to rootID.
//
// Parent links come straight from the parent id recorded during the
// crawl, so construction is linear in node count and deterministic.
// Nodes whose recorded parent is absent from the set attach directly
// under the root. Children are ordered by their fetch position.
func Build(rootID string, nodes map[string]crawler.Node) map[string]*Folder {
	folders := make(map[string]*Folder, len(nodes))

	rootName := "Root"
	if root, ok := nodes[rootID]; ok {
		rootName = root.Title
	}
	folders[rootID] = &Folder{ID: rootID, Name: rootName}

	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		if id == rootID {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		node := nodes[id]
		parentID := node.ParentID
		if parentID == "" {
			parentID = rootID
		}
		if _, ok := nodes[parentID]; !ok {
			parentID = rootID
		}
		folders[id] = &Folder{ID: id, Name: node.Title, ParentID: parentID}
	}

	for _, id := range ids {
		f := folders[id]
		parent := folders[f.ParentID]
		parent.Children = append(parent.Children, id)
	}

	// Freeze children in fetch order.
	for _, f := range folders {
		children := f.Children
		sort.SliceStable(children, func(i, j int) bool {
			return nodes[children[i]].Seq < nodes[children[j]].Seq
		})
	}

	return folders
}
