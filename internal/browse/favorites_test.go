package browse

import "testing"

func TestToggleTwiceRestoresMembership(t *testing.T) {
	f := NewFavorites()
	key := FavoriteKey{Language: "Python", Topic: "Алгоритмы", Index: 0}

	if f.IsFavorite(key) {
		t.Fatalf("expected empty registry")
	}
	if !f.Toggle(key) {
		t.Fatalf("first toggle should add")
	}
	if !f.IsFavorite(key) {
		t.Fatalf("expected membership after first toggle")
	}
	if f.Toggle(key) {
		t.Fatalf("second toggle should remove")
	}
	if f.IsFavorite(key) {
		t.Fatalf("expected original state after double toggle")
	}
}

func TestAllSortsByLanguageThenInsertion(t *testing.T) {
	f := NewFavorites()
	f.Toggle(FavoriteKey{Language: "Python", Topic: "Алгоритмы", Index: 1})
	f.Toggle(FavoriteKey{Language: "C++", Topic: "Основы C++", Index: 0})
	f.Toggle(FavoriteKey{Language: "Python", Topic: "Основы Python", Index: 0})

	got := f.All()
	if len(got) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(got))
	}
	if got[0].Language != "C++" {
		t.Fatalf("expected C++ first, got %q", got[0].Language)
	}
	if got[1].Topic != "Алгоритмы" || got[2].Topic != "Основы Python" {
		t.Fatalf("expected insertion order within language, got %q then %q", got[1].Topic, got[2].Topic)
	}
}

func TestWireRoundTrip(t *testing.T) {
	f := NewFavorites()
	key := FavoriteKey{Language: "Python", Topic: "Работа с файлами", Index: 1}
	f.Toggle(key)

	wire := f.Wire()
	if len(wire) != 1 || wire[0] != "Python|Работа с файлами|1" {
		t.Fatalf("unexpected wire form: %#v", wire)
	}

	restored := RestoreFavorites(wire)
	if !restored.IsFavorite(key) {
		t.Fatalf("expected key to survive a round trip")
	}
}

func TestRestoreDropsMalformedEntries(t *testing.T) {
	f := RestoreFavorites([]string{
		"Python|Алгоритмы|0",
		"garbage",
		"a|b|notanumber",
		"a|b|-1",
		"||2",
	})
	if f.Len() != 1 {
		t.Fatalf("expected only the valid entry to survive, got %d", f.Len())
	}
}

func TestParseFavoriteKey(t *testing.T) {
	key, err := ParseFavoriteKey("C#|LINQ и коллекции|1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if key.Language != "C#" || key.Topic != "LINQ и коллекции" || key.Index != 1 {
		t.Fatalf("unexpected key: %#v", key)
	}
	if _, err := ParseFavoriteKey("too|few"); err == nil {
		t.Fatalf("expected malformed key error")
	}
}
