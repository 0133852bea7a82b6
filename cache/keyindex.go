package cache

import "sync"

// KeyIndex tracks the keys of live cache entries in a trie over key
// segments, so invalidation sets can be resolved by exact prefix matching.
// String-level prefix scans were rejected on purpose: with them a
// "review" prefix would also claim "reviewers" keys.
//
// The index is process-wide shared state; all methods are safe for
// concurrent use.
type KeyIndex struct {
	mu   sync.RWMutex
	root *indexNode
	size int
}

type indexNode struct {
	children map[string]*indexNode
	// terminal marks a registered key ending at this node, as opposed to
	// a node that only exists as an interior segment of longer keys.
	terminal bool
}

func newIndexNode() *indexNode {
	return &indexNode{children: make(map[string]*indexNode)}
}

// NewKeyIndex creates an empty key index.
func NewKeyIndex() *KeyIndex {
	return &KeyIndex{root: newIndexNode()}
}

// Register records a key as live. Registering the same key twice is a no-op.
func (i *KeyIndex) Register(k Key) {
	if len(k) == 0 {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	node := i.root
	for _, seg := range k {
		child, ok := node.children[seg]
		if !ok {
			child = newIndexNode()
			node.children[seg] = child
		}
		node = child
	}
	if !node.terminal {
		node.terminal = true
		i.size++
	}
}

// Remove forgets a key. Removing an unregistered key is a no-op.
func (i *KeyIndex) Remove(k Key) {
	if len(k) == 0 {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.removeLocked(k)
}

func (i *KeyIndex) removeLocked(k Key) {
	type step struct {
		parent *indexNode
		seg    string
	}
	path := make([]step, 0, len(k))

	node := i.root
	for _, seg := range k {
		child, ok := node.children[seg]
		if !ok {
			return
		}
		path = append(path, step{parent: node, seg: seg})
		node = child
	}
	if !node.terminal {
		return
	}
	node.terminal = false
	i.size--

	// Prune empty branches bottom-up.
	for n := len(path) - 1; n >= 0; n-- {
		child := path[n].parent.children[path[n].seg]
		if child.terminal || len(child.children) > 0 {
			break
		}
		delete(path[n].parent.children, path[n].seg)
	}
}

// Match returns every registered key whose leading segments equal prefix.
// An empty prefix matches all registered keys.
func (i *KeyIndex) Match(prefix Key) []Key {
	i.mu.RLock()
	defer i.mu.RUnlock()

	node := i.root
	for _, seg := range prefix {
		child, ok := node.children[seg]
		if !ok {
			return nil
		}
		node = child
	}

	var out []Key
	collect(node, prefix.clone(), &out)
	return out
}

func collect(node *indexNode, current Key, out *[]Key) {
	if node.terminal {
		*out = append(*out, current.clone())
	}
	for seg, child := range node.children {
		collect(child, append(current, seg), out)
	}
}

// Drop removes every key matching prefix and returns the removed keys.
// This is the invalidation primitive: callers delete the returned keys
// from the cache backend in the same pass.
func (i *KeyIndex) Drop(prefix Key) []Key {
	matched := i.Match(prefix)

	i.mu.Lock()
	defer i.mu.Unlock()
	for _, k := range matched {
		i.removeLocked(k)
	}
	return matched
}

// Len reports the number of registered keys.
func (i *KeyIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.size
}
