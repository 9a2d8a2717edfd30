package namespace

import (
	"github.com/3leaps/pagecrate/pkg/crawler"
	"github.com/3leaps/pagecrate/pkg/folder"
	"github.com/3leaps/pagecrate/pkg/match"
)

// Project maps a folder tree and its file leaves onto flat namespace
// keys and returns the result as an immutable Snapshot.
//
// A folder's key is its ancestor chain's names joined with "/", root
// excluded, with a trailing "/". A file's key is its parent folder's
// key followed by the leaf name, so files under the root get a bare
// name. Key collisions resolve first-write-wins: folders are placed
// before files, files in extraction order, and later writers are
// silently dropped.
//
// The matcher scopes which file keys are exposed; folders are
// structural and always projected. A nil matcher exposes everything.
func Project(bucket, rootID string, nodes map[string]crawler.Node, folders map[string]*folder.Folder, files []crawler.FileLeaf, m *match.Matcher) *Snapshot {
	objects := make(map[string]ObjectSummary, len(folders)+len(files))
	folderKeys := make(map[string]string, len(folders))

	// Walk the tree root-down so every folder's parent key is known
	// before its own is computed.
	if _, ok := folders[rootID]; ok {
		folderKeys[rootID] = ""
		stack := []string{rootID}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parentKey := folderKeys[id]
			for _, childID := range folders[id].Children {
				child, ok := folders[childID]
				if !ok {
					continue
				}
				key := parentKey + child.Name + "/"
				folderKeys[childID] = key
				stack = append(stack, childID)

				if _, taken := objects[key]; taken {
					continue
				}
				objects[key] = ObjectSummary{
					Key:          key,
					LastModified: nodes[childID].UpdatedAt,
					ETag:         ETag(childID),
					Size:         0,
					StorageClass: StorageClassStandard,
					EntityID:     childID,
					IsFolder:     true,
				}
			}
		}
	}

	for _, leaf := range files {
		parentKey, ok := folderKeys[leaf.ParentID]
		if !ok {
			// Leaf discovered under a node outside the folder set;
			// expose it at the root.
			parentKey = ""
		}
		key := parentKey + leaf.Name
		if !m.Match(key) {
			continue
		}
		if _, taken := objects[key]; taken {
			continue
		}
		objects[key] = ObjectSummary{
			Key:          key,
			LastModified: leaf.UpdatedAt,
			ETag:         ETag(leaf.ID),
			Size:         leaf.Size,
			StorageClass: StorageClassStandard,
			EntityID:     leaf.ID,
			SourceURL:    leaf.SourceURL,
			ExpiresAt:    leaf.ExpiresAt,
		}
	}

	return NewSnapshot(bucket, rootID, objects)
}
