// Package tree builds issue hierarchies from issue metadata and supplies
// the issue-type lookup the analysis engine consumes.
package tree

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog/log"
)

// Issue is one row of the issue metadata file.
type Issue struct {
	Key        string   `json:"key"`
	Title      string   `json:"title,omitempty"`
	Type       string   `json:"issue_type,omitempty"`
	Status     string   `json:"status,omitempty"`
	Assignee   string   `json:"assignee,omitempty"`
	TargetEnd  string   `json:"target_end,omitempty"`
	Versions   []string `json:"fix_versions,omitempty"`
	RealizedBy []string `json:"realized_by,omitempty"`
}

// Index is the issue-key keyed metadata lookup.
type Index map[string]Issue

// LoadIndex reads issue metadata from a JSONL file. Unparseable lines and
// rows without a key are logged and skipped.
func LoadIndex(path string) (Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open issue index: %w", err)
	}
	defer f.Close()

	idx := make(Index)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var iss Issue
		if err := json.Unmarshal(raw, &iss); err != nil {
			log.Warn().Str("path", path).Int("line", line).Err(err).Msg("Skipping unparseable issue row")
			continue
		}
		if iss.Key == "" {
			log.Warn().Str("path", path).Int("line", line).Msg("Skipping issue row without key")
			continue
		}
		idx[iss.Key] = iss
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read issue index: %w", err)
	}
	log.Debug().Str("path", path).Int("issues", len(idx)).Msg("Issue index loaded")
	return idx, nil
}

// TypeOf returns the issue-key -> issue-type map for the whole index.
func (idx Index) TypeOf() map[string]string {
	out := make(map[string]string, len(idx))
	for key, iss := range idx {
		out[key] = iss.Type
	}
	return out
}

// Node is one issue in a built hierarchy.
type Node struct {
	Issue
	Children []*Node
}

// Build constructs the hierarchy rooted at rootKey by following
// realized-by links. Links may form cycles in the raw data; each issue is
// expanded at most once. Children without metadata become leaf placeholder
// nodes and are reported as warnings, not errors.
func Build(idx Index, rootKey string) (*Node, error) {
	root, ok := idx[rootKey]
	if !ok {
		return nil, fmt.Errorf("no metadata for root issue %s", rootKey)
	}

	visited := make(map[string]bool)

	var expand func(iss Issue) *Node
	expand = func(iss Issue) *Node {
		node := &Node{Issue: iss}
		if visited[iss.Key] {
			return node
		}
		visited[iss.Key] = true

		for _, childKey := range iss.RealizedBy {
			child, ok := idx[childKey]
			if !ok {
				log.Warn().Str("issue", childKey).Str("parent", iss.Key).Msg("No metadata for child issue")
				node.Children = append(node.Children, &Node{Issue: Issue{Key: childKey}})
				continue
			}
			node.Children = append(node.Children, expand(child))
		}
		return node
	}

	node := expand(root)
	if len(node.Children) == 0 {
		log.Info().Str("issue", rootKey).Msg("Root issue has no realized-by entries")
	}
	return node, nil
}

// Keys returns the keys of every issue in the subtree, sorted and
// deduplicated.
func (n *Node) Keys() []string {
	seen := make(map[string]bool)
	var walk func(node *Node)
	walk = func(node *Node) {
		seen[node.Key] = true
		for _, c := range node.Children {
			walk(c)
		}
	}
	walk(n)

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Scope restricts the index's type lookup to the subtree under n.
func (n *Node) Scope(idx Index) map[string]string {
	out := make(map[string]string)
	for _, key := range n.Keys() {
		if iss, ok := idx[key]; ok {
			out[key] = iss.Type
		}
	}
	return out
}
