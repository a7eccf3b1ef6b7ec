package app

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"codeaid/internal/browse"
	"codeaid/internal/content"
	"codeaid/internal/runner"
	"codeaid/internal/state"
	"codeaid/internal/telemetry"
	"codeaid/internal/ui"
)

type fakeStore struct {
	settings  map[string]string
	favorites []string
	records   []state.WarmupRecord
	summary   state.Summary
	stats     *state.WarmupStats
}

func (f *fakeStore) EnsureSchema(context.Context) error { return nil }
func (f *fakeStore) SaveSettings(_ context.Context, values map[string]string) error {
	f.settings = values
	return nil
}
func (f *fakeStore) LoadSettings(context.Context) (map[string]string, error) {
	return f.settings, nil
}
func (f *fakeStore) SaveFavorites(_ context.Context, keys []string) error {
	f.favorites = append([]string(nil), keys...)
	return nil
}
func (f *fakeStore) LoadFavorites(context.Context) ([]string, error) { return f.favorites, nil }
func (f *fakeStore) RecordWarmup(_ context.Context, rec state.WarmupRecord) error {
	f.records = append(f.records, rec)
	return nil
}
func (f *fakeStore) GetWarmupStats(context.Context, string, string) (*state.WarmupStats, error) {
	return f.stats, nil
}
func (f *fakeStore) GetSummary(context.Context) (state.Summary, error) { return f.summary, nil }
func (f *fakeStore) Close() error                                      { return nil }

type fakeRunner struct {
	result runner.RunResult
	err    error
	calls  int
}

func (f *fakeRunner) Run(context.Context, string, string) (runner.RunResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeView struct {
	screen    ui.Screen
	browse    ui.BrowseState
	language  string
	topic     string
	favorites []ui.FavoriteRow
	history   []ui.HistoryRow
	warmup    ui.WarmupState
	result    ui.WarmupResult
	runOutput ui.RunOutputState
	infoTitle string
	infoText  string
	flashes   []string
	stopped   bool
	running   bool
	dark      *bool
	fontSize  int
}

func (f *fakeView) Run() error                      { return nil }
func (f *fakeView) Stop()                           { f.stopped = true }
func (f *fakeView) SetController(ui.Controller)     {}
func (f *fakeView) SetScreen(s ui.Screen)           { f.screen = s }
func (f *fakeView) SetCatalog([]ui.LanguageSummary) {}
func (f *fakeView) SetSelection(language, topic string) {
	f.language = language
	f.topic = topic
}
func (f *fakeView) SetBrowseState(st ui.BrowseState)              { f.browse = st }
func (f *fakeView) SetFavorites(rows []ui.FavoriteRow, open bool) { f.favorites = rows }
func (f *fakeView) SetHistory(rows []ui.HistoryRow, open bool)    { f.history = rows }
func (f *fakeView) SetWarmupState(st ui.WarmupState)              { f.warmup = st }
func (f *fakeView) SetWarmupResult(res ui.WarmupResult)           { f.result = res }
func (f *fakeView) SetRunOutput(st ui.RunOutputState)             { f.runOutput = st }
func (f *fakeView) SetInfo(title, text string, open bool) {
	f.infoTitle = title
	f.infoText = text
}
func (f *fakeView) SetWelcomeOpen(bool)     {}
func (f *fakeView) SetRunning(running bool) { f.running = running }
func (f *fakeView) SetDarkMode(dark bool)   { f.dark = &dark }
func (f *fakeView) SetFontSize(size int)    { f.fontSize = size }
func (f *fakeView) FlashStatus(msg string)  { f.flashes = append(f.flashes, msg) }

func testCatalog() *content.Store {
	return content.NewStore([]content.LanguageFile{
		{
			Name: "Python",
			Topics: []content.Topic{
				{
					Name: "Основы Python",
					Snippets: []content.Snippet{
						{Title: "Hello World", Code: "print('hello')"},
						{Title: "Циклы for", Code: "for i in range(3):\n    print(i)"},
						{Title: "Словари", Code: "d = {'a': 1}"},
					},
					Questions: []content.Question{
						{Prompt: "Что выведет print(2 ** 3)?", Options: []string{"8", "6", "9"}, Correct: 0},
						{Prompt: "Как объявить список?", Options: []string{"[]", "{}", "()"}, Correct: 0},
					},
				},
				{
					Name: "Алгоритмы",
					Snippets: []content.Snippet{
						{Title: "Бинарный поиск", Code: "def bsearch(a, x): ..."},
					},
				},
			},
		},
		{
			Name: "Java",
			Topics: []content.Topic{
				{
					Name: "Основы Java",
					Snippets: []content.Snippet{
						{Title: "Класс", Code: "class Main {}"},
					},
				},
			},
		},
	})
}

func newTestApp(t *testing.T, store Store, run SnippetRunner) (*App, *fakeView) {
	t.Helper()
	logger, err := telemetry.NewJSONLogger("")
	if err != nil {
		t.Fatalf("NewJSONLogger: %v", err)
	}
	t.Cleanup(func() { _ = logger.Close() })

	catalog := testCatalog()
	selector := browse.NewSelector(catalog)
	selector.SetLanguage("Python")

	view := &fakeView{}
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	a := &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		catalog:   catalog,
		view:      view,
		runner:    run,
		selector:  selector,
		favorites: browse.NewFavorites(),
		history:   browse.NewHistory(),
		settings:  DefaultSettings(),
		openIndex: -1,
		rng:       rand.New(rand.NewSource(1)),
	}
	return a, view
}

func TestToggleFavoritePersistsWhenAutoSave(t *testing.T) {
	store := &fakeStore{}
	a, view := newTestApp(t, store, &fakeRunner{})

	a.OnToggleFavorite(1)

	if len(store.favorites) != 1 || store.favorites[0] != "Python|Основы Python|1" {
		t.Fatalf("unexpected persisted favorites %v", store.favorites)
	}
	if len(view.flashes) == 0 || view.flashes[0] != "Added to favorites" {
		t.Fatalf("unexpected flashes %v", view.flashes)
	}
	if !view.browse.Rows[1].Favorite {
		t.Fatalf("expected row 1 marked as favorite")
	}

	a.OnToggleFavorite(1)

	if len(store.favorites) != 0 {
		t.Fatalf("expected favorite removed from store, got %v", store.favorites)
	}
	if last := view.flashes[len(view.flashes)-1]; last != "Removed from favorites" {
		t.Fatalf("unexpected flash %q", last)
	}
}

func TestToggleFavoriteSkipsPersistWithoutAutoSave(t *testing.T) {
	store := &fakeStore{}
	a, _ := newTestApp(t, store, &fakeRunner{})
	a.settings.AutoSave = false

	a.OnToggleFavorite(0)

	if store.favorites != nil {
		t.Fatalf("expected no persistence, got %v", store.favorites)
	}
	if a.favorites.Len() != 1 {
		t.Fatalf("expected in-memory favorite, got %d", a.favorites.Len())
	}
}

func TestSelectTopicRejectsUnknownName(t *testing.T) {
	a, view := newTestApp(t, &fakeStore{}, &fakeRunner{})

	a.OnSelectTopic("Несуществующая тема")

	if len(view.flashes) != 1 || !strings.HasPrefix(view.flashes[0], "select topic failed") {
		t.Fatalf("unexpected flashes %v", view.flashes)
	}
}

func TestSelectSnippetRecordsHistoryOnce(t *testing.T) {
	a, view := newTestApp(t, &fakeStore{}, &fakeRunner{})

	a.OnSelectSnippet(0)
	a.OnSelectSnippet(0)
	a.OnSelectSnippet(1)
	a.OnShowHistory()

	if len(view.history) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(view.history))
	}
	// Newest first.
	if view.history[0].Title != "Циклы for" || view.history[1].Title != "Hello World" {
		t.Fatalf("unexpected history order %v", view.history)
	}
}

func TestSearchFiltersRowsKeepsOriginalIndices(t *testing.T) {
	a, view := newTestApp(t, &fakeStore{}, &fakeRunner{})

	a.OnSearch("цикл")

	if len(view.browse.Rows) != 1 {
		t.Fatalf("expected 1 filtered row, got %d", len(view.browse.Rows))
	}
	if view.browse.Rows[0].Index != 1 || view.browse.Rows[0].Title != "Циклы for" {
		t.Fatalf("unexpected row %+v", view.browse.Rows[0])
	}

	a.OnSearch("")

	if len(view.browse.Rows) != 3 {
		t.Fatalf("expected full list after clearing filter, got %d", len(view.browse.Rows))
	}
}

func TestWarmupFullPassRecordsPerfectTier(t *testing.T) {
	store := &fakeStore{}
	a, view := newTestApp(t, store, &fakeRunner{})

	a.OnStartWarmup()

	if view.screen != ui.ScreenWarmup {
		t.Fatalf("expected warmup screen")
	}
	if view.warmup.Total != 2 {
		t.Fatalf("expected 2 sampled questions, got %d", view.warmup.Total)
	}

	// Both fixture questions keep the correct answer at option 0.
	a.OnAnswerQuestion(0)
	if !view.warmup.Answered || view.warmup.CorrectIndex != 0 {
		t.Fatalf("unexpected warmup state %+v", view.warmup)
	}
	a.OnNextQuestion()
	a.OnAnswerQuestion(0)
	a.OnFinishWarmup()

	if len(store.records) != 1 {
		t.Fatalf("expected 1 warmup record, got %d", len(store.records))
	}
	rec := store.records[0]
	if rec.Language != "Python" || rec.Topic != "Основы Python" || rec.Score != 2 || rec.Total != 2 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if !view.result.Visible || view.result.Tier != "perfect" {
		t.Fatalf("unexpected result %+v", view.result)
	}
	if view.screen != ui.ScreenBrowse {
		t.Fatalf("expected browse screen after finish")
	}
	if a.session != nil {
		t.Fatalf("expected session discarded")
	}
}

func TestResetWarmupDiscardsWithoutRecording(t *testing.T) {
	store := &fakeStore{}
	a, view := newTestApp(t, store, &fakeRunner{})

	a.OnStartWarmup()
	a.OnAnswerQuestion(0)
	a.OnResetWarmup()

	if len(store.records) != 0 {
		t.Fatalf("discarded warmup must not be recorded, got %v", store.records)
	}
	if a.session != nil {
		t.Fatalf("expected session discarded")
	}
	if view.result.Visible {
		t.Fatalf("discarded warmup must not show a result, got %+v", view.result)
	}
	if view.screen != ui.ScreenBrowse {
		t.Fatalf("expected browse screen after discard")
	}
	if len(view.flashes) == 0 || view.flashes[len(view.flashes)-1] != "Warmup discarded" {
		t.Fatalf("unexpected flashes %v", view.flashes)
	}

	// No session left, so a second reset is inert.
	a.OnResetWarmup()
	if len(view.flashes) != 1 {
		t.Fatalf("reset without a session must be a no-op, got %v", view.flashes)
	}
}

func TestWarmupWrongAnswerScoresOnceOnRetry(t *testing.T) {
	a, view := newTestApp(t, &fakeStore{}, &fakeRunner{})

	a.OnStartWarmup()
	a.OnAnswerQuestion(1)

	if view.warmup.Score != 0 || view.warmup.Chosen != 1 {
		t.Fatalf("unexpected state after wrong answer %+v", view.warmup)
	}

	a.OnAnswerQuestion(0)

	if view.warmup.Score != 0 {
		t.Fatalf("retry after a wrong answer must not score, got %d", view.warmup.Score)
	}
}

func TestWarmupWithoutQuestionsFlashes(t *testing.T) {
	a, view := newTestApp(t, &fakeStore{}, &fakeRunner{})

	if err := a.selector.SetTopic("Алгоритмы"); err != nil {
		t.Fatalf("SetTopic: %v", err)
	}
	a.OnStartWarmup()

	if a.session != nil {
		t.Fatalf("expected no session")
	}
	if len(view.flashes) != 1 || view.flashes[0] != "No warmup questions for this topic" {
		t.Fatalf("unexpected flashes %v", view.flashes)
	}
}

func TestRunSnippetShowsOutput(t *testing.T) {
	run := &fakeRunner{result: runner.RunResult{Output: "hello\n", ExitCode: 0, Duration: 120 * time.Millisecond}}
	a, view := newTestApp(t, &fakeStore{}, run)

	a.OnRunSnippet(0)

	if run.calls != 1 {
		t.Fatalf("expected 1 run call, got %d", run.calls)
	}
	if !view.runOutput.Visible || view.runOutput.Output != "hello\n" || view.runOutput.DurationMS != 120 {
		t.Fatalf("unexpected run output %+v", view.runOutput)
	}
	if view.running {
		t.Fatalf("expected running indicator cleared")
	}
}

func TestRunSnippetUnsupportedLanguage(t *testing.T) {
	run := &fakeRunner{err: runner.ErrUnsupportedLanguage}
	a, view := newTestApp(t, &fakeStore{}, run)

	a.OnRunSnippet(0)

	if view.runOutput.Visible {
		t.Fatalf("no output overlay expected")
	}
	if len(view.flashes) != 1 || view.flashes[0] != "Run is only available for Python snippets" {
		t.Fatalf("unexpected flashes %v", view.flashes)
	}
}

func TestExportSnippetWritesFile(t *testing.T) {
	a, view := newTestApp(t, &fakeStore{}, &fakeRunner{})

	a.OnExportSnippet(0)

	if len(view.flashes) != 1 || !strings.HasPrefix(view.flashes[0], "Exported to ") {
		t.Fatalf("unexpected flashes %v", view.flashes)
	}
	if !strings.HasSuffix(view.flashes[0], ".py") {
		t.Fatalf("expected .py extension for Python, got %q", view.flashes[0])
	}
}

func TestOpenFavoriteSwitchesSelection(t *testing.T) {
	a, view := newTestApp(t, &fakeStore{}, &fakeRunner{})

	a.OnOpenFavorite("Java|Основы Java|0")

	if view.language != "Java" || view.topic != "Основы Java" {
		t.Fatalf("unexpected selection %s/%s", view.language, view.topic)
	}
	if !view.browse.HasDetail || view.browse.Detail.Title != "Класс" {
		t.Fatalf("unexpected detail %+v", view.browse.Detail)
	}
}

func TestOpenFavoriteRejectsMalformedKey(t *testing.T) {
	a, view := newTestApp(t, &fakeStore{}, &fakeRunner{})

	a.OnOpenFavorite("garbage")

	if len(view.flashes) != 1 || !strings.HasPrefix(view.flashes[0], "open favorite failed") {
		t.Fatalf("unexpected flashes %v", view.flashes)
	}
}

func TestShowFavoritesSkipsStaleEntries(t *testing.T) {
	a, view := newTestApp(t, &fakeStore{}, &fakeRunner{})
	a.favorites = browse.RestoreFavorites([]string{
		"Python|Основы Python|0",
		"Python|Основы Python|99",
	})

	a.OnShowFavorites()

	if len(view.favorites) != 1 {
		t.Fatalf("expected stale favorite hidden, got %v", view.favorites)
	}
	if view.favorites[0].Title != "Hello World" {
		t.Fatalf("unexpected favorite %+v", view.favorites[0])
	}
}

func TestOpenStatsDegradedStore(t *testing.T) {
	a, view := newTestApp(t, nil, &fakeRunner{})

	a.OnOpenStats()

	if view.infoTitle != "Stats" || !strings.Contains(view.infoText, "degraded") {
		t.Fatalf("unexpected info %q / %q", view.infoTitle, view.infoText)
	}
}

func TestOpenStatsShowsSummaryAndTopic(t *testing.T) {
	store := &fakeStore{
		summary: state.Summary{TopicsAttempted: 2, Attempts: 5, BestScoreSum: 5, BestTotalSum: 6},
		stats:   &state.WarmupStats{Language: "Python", Topic: "Основы Python", Attempts: 3, BestScore: 3, BestTotal: 3},
	}
	a, view := newTestApp(t, store, &fakeRunner{})

	a.OnOpenStats()

	for _, want := range []string{"Topics attempted: 2", "Warmup attempts: 5", "Best scores combined: 5 of 6", "Attempts: 3  Best: 3 of 3"} {
		if !strings.Contains(view.infoText, want) {
			t.Fatalf("stats text missing %q:\n%s", want, view.infoText)
		}
	}
}

func TestToggleDarkModePersists(t *testing.T) {
	store := &fakeStore{}
	a, view := newTestApp(t, store, &fakeRunner{})

	a.OnToggleDarkMode()

	if a.settings.DarkMode {
		t.Fatalf("expected dark mode off after toggle")
	}
	if view.dark == nil || *view.dark {
		t.Fatalf("expected view switched to light theme")
	}
	if store.settings["dark_mode"] != "false" {
		t.Fatalf("unexpected persisted settings %v", store.settings)
	}
}

func TestAdjustFontSizePersistsAndUpdatesView(t *testing.T) {
	store := &fakeStore{}
	a, view := newTestApp(t, store, &fakeRunner{})

	a.OnAdjustFontSize(1)

	if a.settings.FontSize != 15 {
		t.Fatalf("expected font size 15, got %d", a.settings.FontSize)
	}
	if view.fontSize != 15 {
		t.Fatalf("expected view font size 15, got %d", view.fontSize)
	}
	if store.settings["font_size"] != "15" {
		t.Fatalf("unexpected persisted settings %v", store.settings)
	}
	if len(view.flashes) == 0 || view.flashes[len(view.flashes)-1] != "Font size 15" {
		t.Fatalf("unexpected flashes %v", view.flashes)
	}
}

func TestAdjustFontSizeClampsAtBounds(t *testing.T) {
	store := &fakeStore{}
	a, view := newTestApp(t, store, &fakeRunner{})
	a.settings.FontSize = maxFontSize

	a.OnAdjustFontSize(1)

	if a.settings.FontSize != maxFontSize {
		t.Fatalf("expected font size pinned at %d, got %d", maxFontSize, a.settings.FontSize)
	}
	if store.settings != nil {
		t.Fatalf("unchanged size must not persist, got %v", store.settings)
	}
	if view.fontSize != 0 {
		t.Fatalf("unchanged size must not touch the view, got %d", view.fontSize)
	}

	a.settings.FontSize = minFontSize
	a.OnAdjustFontSize(-1)
	if a.settings.FontSize != minFontSize {
		t.Fatalf("expected font size pinned at %d, got %d", minFontSize, a.settings.FontSize)
	}
}

func TestDismissWelcomePersistsOnce(t *testing.T) {
	store := &fakeStore{}
	a, _ := newTestApp(t, store, &fakeRunner{})

	a.OnDismissWelcome()

	if a.settings.ShowWelcome {
		t.Fatalf("expected welcome disabled")
	}
	if store.settings["show_welcome"] != "false" {
		t.Fatalf("unexpected persisted settings %v", store.settings)
	}

	store.settings = nil
	a.OnDismissWelcome()
	if store.settings != nil {
		t.Fatalf("second dismiss must be a no-op")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s := Settings{FontSize: 18, DarkMode: false, AutoSave: true, ShowWelcome: false}
	got := SettingsFromMap(s.ToMap())
	if got != s {
		t.Fatalf("round trip mismatch: %+v != %+v", got, s)
	}
}

func TestSettingsFromMapIgnoresGarbage(t *testing.T) {
	got := SettingsFromMap(map[string]string{
		"font_size":    "huge",
		"dark_mode":    "maybe",
		"show_welcome": "false",
	})
	want := DefaultSettings()
	want.ShowWelcome = false
	if got != want {
		t.Fatalf("unexpected settings %+v", got)
	}
}

func TestConfigValidateFillsDefaults(t *testing.T) {
	cfg := Config{DataDir: "/tmp/codeaid-test"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.UI.MotionLevel != "full" || cfg.UI.MouseScope != "scoped" {
		t.Fatalf("unexpected ui defaults %+v", cfg.UI)
	}
	if cfg.Run.Interpreter != "python3" || cfg.Run.TimeoutSeconds != 10 {
		t.Fatalf("unexpected run defaults %+v", cfg.Run)
	}
	if cfg.CatalogDir != "catalog" {
		t.Fatalf("unexpected catalog dir %q", cfg.CatalogDir)
	}
}

func TestConfigValidateRejectsBadMotionLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/tmp/codeaid-test"
	cfg.UI.MotionLevel = "bouncy"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for invalid motion level")
	}
}
