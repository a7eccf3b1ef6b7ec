package browse

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FavoriteKey identifies a snippet by position. The triple is only stable
// while the catalog keeps its load order, which it does for the process
// lifetime; stale keys from older catalogs must be skippable, never fatal.
type FavoriteKey struct {
	Language string
	Topic    string
	Index    int
}

// String renders the wire form "language|topic|index" used by the
// persistence layer.
func (k FavoriteKey) String() string {
	return fmt.Sprintf("%s|%s|%d", k.Language, k.Topic, k.Index)
}

func ParseFavoriteKey(raw string) (FavoriteKey, error) {
	parts := strings.Split(raw, "|")
	if len(parts) != 3 {
		return FavoriteKey{}, fmt.Errorf("malformed favorite key %q", raw)
	}
	idx, err := strconv.Atoi(parts[2])
	if err != nil || idx < 0 {
		return FavoriteKey{}, fmt.Errorf("malformed favorite index in %q", raw)
	}
	if parts[0] == "" || parts[1] == "" {
		return FavoriteKey{}, fmt.Errorf("malformed favorite key %q", raw)
	}
	return FavoriteKey{Language: parts[0], Topic: parts[1], Index: idx}, nil
}

// Favorites is the in-memory registry of favorited snippets. Membership
// changes only through Toggle; the persistence layer mirrors every change.
type Favorites struct {
	seq  int
	keys map[FavoriteKey]int
}

func NewFavorites() *Favorites {
	return &Favorites{keys: map[FavoriteKey]int{}}
}

// RestoreFavorites builds a registry from persisted wire-form keys.
// Malformed entries are dropped silently; a corrupt store degrades to a
// smaller set, not an error.
func RestoreFavorites(raw []string) *Favorites {
	f := NewFavorites()
	for _, r := range raw {
		key, err := ParseFavoriteKey(r)
		if err != nil {
			continue
		}
		if _, ok := f.keys[key]; ok {
			continue
		}
		f.seq++
		f.keys[key] = f.seq
	}
	return f
}

func (f *Favorites) IsFavorite(key FavoriteKey) bool {
	_, ok := f.keys[key]
	return ok
}

// Toggle flips membership and reports the new state. Toggling twice restores
// the original state.
func (f *Favorites) Toggle(key FavoriteKey) bool {
	if _, ok := f.keys[key]; ok {
		delete(f.keys, key)
		return false
	}
	f.seq++
	f.keys[key] = f.seq
	return true
}

func (f *Favorites) Len() int { return len(f.keys) }

// All returns the keys sorted by language, then by insertion order.
func (f *Favorites) All() []FavoriteKey {
	out := make([]FavoriteKey, 0, len(f.keys))
	for k := range f.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Language != out[j].Language {
			return out[i].Language < out[j].Language
		}
		return f.keys[out[i]] < f.keys[out[j]]
	})
	return out
}

// Wire returns every key in persisted form, in All() order.
func (f *Favorites) Wire() []string {
	keys := f.All()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.String())
	}
	return out
}
