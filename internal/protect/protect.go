// Package protect implements namespace-level write protection: ordered
// prefix rules that classify a key into an action level before an edit or
// delete is allowed to proceed.
package protect

import (
	"github.com/derekparker/trie"
)

// Level is the action a protection rule demands before a write proceeds.
type Level int

const (
	Allow Level = iota
	Warn
	Confirm
	Block
)

func (l Level) String() string {
	switch l {
	case Warn:
		return "warn"
	case Confirm:
		return "confirm"
	case Block:
		return "block"
	default:
		return "allow"
	}
}

// Namespace is one configured protection rule: every key with this literal
// string Prefix is classified at Level.
type Namespace struct {
	Prefix string
	Level  Level
}

// Policy classifies keys against an ordered list of Namespace rules: the
// first rule (in declared order) whose prefix matches wins (spec §4.5, P9
// in spec §8). No match classifies as Allow.
//
// Matching is accelerated with a prefix trie: every rule prefix is
// inserted keyed by itself and valued by its declared-order index.
// Classification then walks the *key's own* prefixes of increasing length
// (key[:1], key[:2], ...) doing an exact trie lookup at each length — an
// O(len(key)) walk down the trie's nodes rather than an O(len(rules))
// comparison against every rule — and keeps the smallest index seen.
type Policy struct {
	rules []Namespace
	index *trie.Trie
}

// New builds a Policy from an ordered rule list. The order of rules is
// significant and is preserved exactly as given.
func New(rules []Namespace) *Policy {
	p := &Policy{rules: rules, index: trie.New()}
	for i, r := range rules {
		if r.Prefix == "" {
			continue
		}
		if _, ok := p.index.Find(r.Prefix); ok {
			continue // an earlier rule already owns this prefix
		}
		p.index.Add(r.Prefix, i)
	}
	return p
}

// Classify returns the action level for key per the first matching rule in
// declared order, or Allow if no rule's prefix matches.
func (p *Policy) Classify(key string) Level {
	if p == nil || len(p.rules) == 0 {
		return Allow
	}

	best := -1
	for n := 1; n <= len(key); n++ {
		node, ok := p.index.Find(key[:n])
		if !ok || !node.Terminating() {
			continue
		}
		idx, ok := node.Meta().(int)
		if !ok {
			continue
		}
		if best == -1 || idx < best {
			best = idx
		}
	}
	if best == -1 {
		return Allow
	}
	return p.rules[best].Level
}
