package devtools

import (
	"testing"

	"codeaid/internal/ui"
)

func TestResolveScenarioMapping(t *testing.T) {
	m := NewManager()

	cases := []struct {
		name   string
		check  func(Scenario) bool
		reason string
	}{
		{"welcome", func(s Scenario) bool { return s.Welcome }, "welcome overlay open"},
		{"favorites", func(s Scenario) bool { return s.Favorites }, "favorites overlay open"},
		{"history", func(s Scenario) bool { return s.History }, "history overlay open"},
		{"warmup", func(s Scenario) bool { return s.Screen == ui.ScreenWarmup }, "warmup screen"},
		{"result_pass", func(s Scenario) bool { return s.ResultPass != nil && *s.ResultPass }, "passing result"},
		{"result_retry", func(s Scenario) bool { return s.ResultPass != nil && !*s.ResultPass }, "retry result"},
		{"run_output", func(s Scenario) bool { return s.RunOutput }, "run output overlay"},
		{"stats", func(s Scenario) bool { return s.Stats }, "stats overlay"},
	}
	for _, tc := range cases {
		if sc := m.Resolve(tc.name); !tc.check(sc) {
			t.Fatalf("scenario %q: expected %s, got %+v", tc.name, tc.reason, sc)
		}
	}

	if sc := m.Resolve("unknown"); sc.Name != "browse" {
		t.Fatalf("unknown scenario must fall back to browse, got %q", sc.Name)
	}
}

func TestDemoCatalogResolves(t *testing.T) {
	catalog := DemoCatalog()

	if got := catalog.Languages(); len(got) != 2 || got[0] != "Python" {
		t.Fatalf("unexpected languages %v", got)
	}
	if _, ok := catalog.Snippet("Python", "Основы Python", 1); !ok {
		t.Fatalf("expected second Python snippet to resolve")
	}
	if qs := catalog.Questions("Python", "Основы Python"); len(qs) != 2 {
		t.Fatalf("expected 2 demo questions, got %d", len(qs))
	}
}

func TestApplyAcceptsEveryScenario(t *testing.T) {
	m := NewManager()
	for _, name := range []string{
		"browse", "welcome", "favorites", "history", "warmup",
		"result_pass", "result_retry", "run_output", "stats", "unknown",
	} {
		v := ui.New(ui.Options{DarkMode: true})
		m.Apply(v, m.Resolve(name))
	}
}
