package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"codeaid/internal/browse"
	"codeaid/internal/content"
	"codeaid/internal/quiz"
	"codeaid/internal/runner"
	"codeaid/internal/state"
	"codeaid/internal/telemetry"
	"codeaid/internal/ui"

	"github.com/google/uuid"
)

type answerState struct {
	chosen       int
	correctIndex int
	answered     bool
}

type App struct {
	cfg Config

	logger  *telemetry.JSONLogger
	store   Store
	catalog *content.Store
	view    ui.View
	runner  SnippetRunner

	sessionID string

	// mu serializes the On* handlers, which arrive from view goroutines.
	mu          sync.Mutex
	selector    *browse.Selector
	favorites   *browse.Favorites
	history     *browse.History
	settings    Settings
	session     *quiz.Session
	answers     []answerState
	searchQuery string
	openIndex   int
	rng         *rand.Rand
}

func New(cfg Config) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	logger, err := telemetry.NewJSONLogger(cfg.LogPath)
	if err != nil {
		return nil, err
	}
	logger.SetBase(map[string]any{"app": "codeaid", "session": sessionID})

	// Persistence is best effort: a broken store degrades favorites and
	// settings to session-only, it never blocks startup.
	var store Store
	if s, err := state.NewSQLite(filepath.Join(cfg.DataDir, "codeaid.db")); err != nil {
		logger.Warn("state.degraded", map[string]any{"error": err.Error()})
	} else if err := s.EnsureSchema(context.Background()); err != nil {
		logger.Warn("state.degraded", map[string]any{"error": err.Error()})
		_ = s.Close()
	} else {
		store = s
	}

	loader := content.NewLoader()
	catalog, err := loader.LoadCatalog(context.Background(), cfg.CatalogDir)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		_ = logger.Close()
		return nil, err
	}
	if len(catalog.Languages()) == 0 {
		if store != nil {
			_ = store.Close()
		}
		_ = logger.Close()
		return nil, fmt.Errorf("no languages available under %s", cfg.CatalogDir)
	}

	settings := DefaultSettings()
	favorites := browse.NewFavorites()
	if store != nil {
		if values, err := store.LoadSettings(context.Background()); err != nil {
			logger.Warn("settings.load_failed", map[string]any{"error": err.Error()})
		} else {
			settings = SettingsFromMap(values)
		}
		if keys, err := store.LoadFavorites(context.Background()); err != nil {
			logger.Warn("favorites.load_failed", map[string]any{"error": err.Error()})
		} else {
			favorites = browse.RestoreFavorites(keys)
		}
	}

	selector := browse.NewSelector(catalog)
	selector.SetLanguage(catalog.Languages()[0])

	view := ui.New(ui.Options{
		ASCIIOnly:   cfg.ASCIIOnly,
		Debug:       cfg.Debug,
		DarkMode:    settings.DarkMode,
		FontSize:    settings.FontSize,
		MotionLevel: cfg.UI.MotionLevel,
		MouseScope:  cfg.UI.MouseScope,
	})

	a := &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		catalog:   catalog,
		view:      view,
		runner:    &runner.Runner{Interpreter: cfg.Run.Interpreter, Timeout: time.Duration(cfg.Run.TimeoutSeconds) * time.Second},
		sessionID: sessionID,
		selector:  selector,
		favorites: favorites,
		history:   browse.NewHistory(),
		settings:  settings,
		openIndex: -1,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	view.SetController(a)
	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("app.start", map[string]any{
		"languages": len(a.catalog.Languages()),
		"favorites": a.favorites.Len(),
		"degraded":  a.store == nil,
	})

	a.view.SetCatalog(a.languageSummaries())
	a.mu.Lock()
	a.syncBrowse()
	a.mu.Unlock()
	if a.settings.ShowWelcome {
		a.view.SetWelcomeOpen(true)
	}
	a.view.SetScreen(ui.ScreenBrowse)

	return a.view.Run()
}

func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.mu.Lock()
	wire := a.favorites.Wire()
	settings := a.settings
	a.mu.Unlock()

	if a.store != nil {
		if err := a.store.SaveFavorites(ctx, wire); err != nil {
			a.logger.Error("favorites.save_failed", map[string]any{"error": err.Error()})
		}
		if err := a.store.SaveSettings(ctx, settings.ToMap()); err != nil {
			a.logger.Error("settings.save_failed", map[string]any{"error": err.Error()})
		}
		_ = a.store.Close()
	}
	a.logger.Info("app.stop", nil)
	_ = a.logger.Close()
}

func (a *App) languageSummaries() []ui.LanguageSummary {
	langs := a.catalog.Languages()
	out := make([]ui.LanguageSummary, 0, len(langs))
	for _, lang := range langs {
		out = append(out, ui.LanguageSummary{Name: lang, Topics: a.catalog.Topics(lang)})
	}
	return out
}

// syncBrowse pushes the current selection, filter and detail to the view.
// Callers must hold mu.
func (a *App) syncBrowse() {
	lang := a.selector.CurrentLanguage()
	topic := a.selector.CurrentTopic()
	snippets := a.selector.ActiveSnippets()

	indices := browse.FilterIndices(snippets, a.searchQuery)
	rows := make([]ui.SnippetRow, 0, len(indices))
	for _, idx := range indices {
		rows = append(rows, ui.SnippetRow{
			Index:    idx,
			Title:    snippets[idx].Title,
			Favorite: a.favorites.IsFavorite(browse.FavoriteKey{Language: lang, Topic: topic, Index: idx}),
		})
	}

	st := ui.BrowseState{
		Language: lang,
		Topic:    topic,
		Query:    a.searchQuery,
		Rows:     rows,
	}
	if a.openIndex >= 0 {
		if snip, ok := a.catalog.Snippet(lang, topic, a.openIndex); ok {
			st.Detail = ui.SnippetDetail{
				Title:       snip.Title,
				Code:        snip.Code,
				Explanation: snip.Explanation,
				UseCase:     snip.UseCase,
				Complexity:  snip.Complexity,
				Tags:        append([]string(nil), snip.Tags...),
			}
			st.HasDetail = true
		}
	}
	a.view.SetSelection(lang, topic)
	a.view.SetBrowseState(st)
}

func (a *App) OnSelectLanguage(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selector.SetLanguage(name)
	a.openIndex = -1
	a.syncBrowse()
}

func (a *App) OnSelectTopic(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.selector.SetTopic(name); err != nil {
		a.view.FlashStatus("select topic failed: " + err.Error())
		return
	}
	a.openIndex = -1
	a.syncBrowse()
}

func (a *App) OnSelectSnippet(index int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	lang := a.selector.CurrentLanguage()
	topic := a.selector.CurrentTopic()
	snip, ok := a.catalog.Snippet(lang, topic, index)
	if !ok {
		a.view.FlashStatus("snippet is no longer available")
		return
	}
	a.openIndex = index
	a.history.Record(browse.FavoriteKey{Language: lang, Topic: topic, Index: index})
	a.logger.Info("snippet.opened", map[string]any{"language": lang, "topic": topic, "title": snip.Title})
	a.syncBrowse()
}

func (a *App) OnSearch(query string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.searchQuery = query
	a.syncBrowse()
}

func (a *App) OnToggleFavorite(index int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	lang := a.selector.CurrentLanguage()
	topic := a.selector.CurrentTopic()
	if _, ok := a.catalog.Snippet(lang, topic, index); !ok {
		a.view.FlashStatus("snippet is no longer available")
		return
	}
	key := browse.FavoriteKey{Language: lang, Topic: topic, Index: index}
	if a.favorites.Toggle(key) {
		a.view.FlashStatus("Added to favorites")
	} else {
		a.view.FlashStatus("Removed from favorites")
	}
	if a.settings.AutoSave {
		a.persistFavoritesLocked()
	}
	a.syncBrowse()
}

// persistFavoritesLocked mirrors the registry to the store. Callers hold mu.
func (a *App) persistFavoritesLocked() {
	if a.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.store.SaveFavorites(ctx, a.favorites.Wire()); err != nil {
		a.logger.Error("favorites.save_failed", map[string]any{"error": err.Error()})
	}
}

func (a *App) persistSettingsLocked() {
	if a.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.store.SaveSettings(ctx, a.settings.ToMap()); err != nil {
		a.logger.Error("settings.save_failed", map[string]any{"error": err.Error()})
	}
}

func (a *App) OnShowFavorites() {
	a.mu.Lock()
	defer a.mu.Unlock()
	keys := a.favorites.All()
	rows := make([]ui.FavoriteRow, 0, len(keys))
	for _, key := range keys {
		// Keys that no longer resolve stay in the registry but are not shown.
		snip, ok := a.catalog.Snippet(key.Language, key.Topic, key.Index)
		if !ok {
			continue
		}
		rows = append(rows, ui.FavoriteRow{
			Key:      key.String(),
			Language: key.Language,
			Topic:    key.Topic,
			Title:    snip.Title,
		})
	}
	a.view.SetFavorites(rows, true)
}

func (a *App) OnOpenFavorite(raw string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key, err := browse.ParseFavoriteKey(raw)
	if err != nil {
		a.view.FlashStatus("open favorite failed: " + err.Error())
		return
	}
	snip, ok := a.catalog.Snippet(key.Language, key.Topic, key.Index)
	if !ok {
		a.view.FlashStatus("favorite is no longer available")
		return
	}
	a.selector.SetLanguage(key.Language)
	if err := a.selector.SetTopic(key.Topic); err != nil {
		a.view.FlashStatus("open favorite failed: " + err.Error())
		return
	}
	a.openIndex = key.Index
	a.history.Record(key)
	a.logger.Info("favorite.opened", map[string]any{"language": key.Language, "topic": key.Topic, "title": snip.Title})
	a.view.SetScreen(ui.ScreenBrowse)
	a.syncBrowse()
}

func (a *App) OnShowHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	entries := a.history.Entries()
	rows := make([]ui.HistoryRow, 0, len(entries))
	// Newest first.
	for i := len(entries) - 1; i >= 0; i-- {
		key := entries[i]
		title := "(removed)"
		if snip, ok := a.catalog.Snippet(key.Language, key.Topic, key.Index); ok {
			title = snip.Title
		}
		rows = append(rows, ui.HistoryRow{Language: key.Language, Topic: key.Topic, Title: title})
	}
	a.view.SetHistory(rows, true)
}

func (a *App) OnRunSnippet(index int) {
	a.mu.Lock()
	lang := a.selector.CurrentLanguage()
	topic := a.selector.CurrentTopic()
	snip, ok := a.catalog.Snippet(lang, topic, index)
	a.mu.Unlock()
	if !ok {
		a.view.FlashStatus("snippet is no longer available")
		return
	}

	a.view.SetRunning(true)
	defer a.view.SetRunning(false)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.Run.TimeoutSeconds+5)*time.Second)
	defer cancel()

	res, err := a.runner.Run(ctx, lang, snip.Code)
	if err != nil {
		if errors.Is(err, runner.ErrUnsupportedLanguage) {
			a.view.FlashStatus("Run is only available for Python snippets")
			return
		}
		a.logger.Error("run.failed", map[string]any{"language": lang, "title": snip.Title, "error": err.Error()})
		a.view.FlashStatus("run failed: " + err.Error())
		return
	}
	a.logger.Info("run.finished", map[string]any{
		"language":  lang,
		"title":     snip.Title,
		"exit_code": res.ExitCode,
		"timed_out": res.TimedOut,
		"ms":        res.Duration.Milliseconds(),
	})
	a.view.SetRunOutput(ui.RunOutputState{
		Visible:    true,
		Title:      "Run: " + snip.Title,
		Output:     res.Output,
		ExitCode:   res.ExitCode,
		TimedOut:   res.TimedOut,
		DurationMS: res.Duration.Milliseconds(),
	})
}

func (a *App) OnExportSnippet(index int) {
	a.mu.Lock()
	lang := a.selector.CurrentLanguage()
	topic := a.selector.CurrentTopic()
	snip, ok := a.catalog.Snippet(lang, topic, index)
	a.mu.Unlock()
	if !ok {
		a.view.FlashStatus("snippet is no longer available")
		return
	}

	path := filepath.Join(a.cfg.DataDir, "exports", runner.ExportName(snip.Title, lang))
	final, err := runner.ExportSnippet(path, lang, snip.Code)
	if err != nil {
		a.logger.Error("export.failed", map[string]any{"title": snip.Title, "error": err.Error()})
		a.view.FlashStatus("export failed: " + err.Error())
		return
	}
	a.logger.Info("snippet.exported", map[string]any{"title": snip.Title, "path": final})
	a.view.FlashStatus("Exported to " + final)
}

func (a *App) OnStartWarmup() {
	a.mu.Lock()
	defer a.mu.Unlock()
	lang := a.selector.CurrentLanguage()
	topic := a.selector.CurrentTopic()
	session, err := quiz.Start(lang, topic, a.selector.ActiveQuestions(), a.rng)
	if err != nil {
		if errors.Is(err, quiz.ErrNoQuestions) {
			a.view.FlashStatus("No warmup questions for this topic")
			return
		}
		a.view.FlashStatus("start warmup failed: " + err.Error())
		return
	}
	a.session = session
	a.answers = make([]answerState, session.Total())
	a.logger.Info("warmup.started", map[string]any{
		"quiz_session": session.ID,
		"language":     lang,
		"topic":        topic,
		"questions":    session.Total(),
	})
	a.syncWarmup()
	a.view.SetScreen(ui.ScreenWarmup)
}

// syncWarmup pushes the current question to the view. Callers hold mu.
func (a *App) syncWarmup() {
	if a.session == nil {
		return
	}
	q := a.session.Current()
	idx := a.session.CurrentIndex()
	st := ui.WarmupState{
		Language: a.session.Language,
		Topic:    a.session.Topic,
		Index:    idx,
		Total:    a.session.Total(),
		Score:    a.session.Score(),
		Prompt:   q.Prompt,
		Options:  append([]string(nil), q.Options...),
	}
	if a.answers[idx].answered {
		st.Answered = true
		st.Chosen = a.answers[idx].chosen
		st.CorrectIndex = a.answers[idx].correctIndex
	}
	a.view.SetWarmupState(st)
}

func (a *App) OnAnswerQuestion(option int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return
	}
	fb, err := a.session.Answer(option)
	if err != nil {
		a.view.FlashStatus("answer failed: " + err.Error())
		return
	}
	idx := a.session.CurrentIndex()
	a.answers[idx] = answerState{chosen: option, correctIndex: fb.CorrectIndex, answered: true}
	a.syncWarmup()
}

func (a *App) OnNextQuestion() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return
	}
	if a.session.Next() {
		a.syncWarmup()
	}
}

func (a *App) OnPrevQuestion() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return
	}
	if a.session.Prev() {
		a.syncWarmup()
	}
}

func (a *App) OnFinishWarmup() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return
	}
	res := a.session.Finish()
	lang := a.session.Language
	topic := a.session.Topic
	quizID := a.session.ID
	a.session = nil
	a.answers = nil

	if a.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.store.RecordWarmup(ctx, state.WarmupRecord{
			Language: lang,
			Topic:    topic,
			Score:    res.Score,
			Total:    res.Total,
			When:     time.Now().UTC(),
		}); err != nil {
			a.logger.Error("warmup.record_failed", map[string]any{"error": err.Error()})
		}
		cancel()
	}
	a.logger.Info("warmup.finished", map[string]any{
		"quiz_session": quizID,
		"score":        res.Score,
		"total":        res.Total,
		"tier":         string(res.Tier),
	})

	a.view.SetScreen(ui.ScreenBrowse)
	a.view.SetWarmupResult(ui.WarmupResult{
		Visible: true,
		Score:   res.Score,
		Total:   res.Total,
		Tier:    string(res.Tier),
		Message: tierMessage(res.Tier),
	})
	a.syncBrowse()
}

// OnResetWarmup discards the running session as if it was never started.
// Nothing is scored, recorded or shown as a result.
func (a *App) OnResetWarmup() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return
	}
	quizID := a.session.ID
	a.session = nil
	a.answers = nil
	a.logger.Info("warmup.reset", map[string]any{"quiz_session": quizID})
	a.view.SetScreen(ui.ScreenBrowse)
	a.view.FlashStatus("Warmup discarded")
	a.syncBrowse()
}

func tierMessage(tier quiz.Tier) string {
	switch tier {
	case quiz.TierPerfect:
		return "Perfect score. Keep it up."
	case quiz.TierGood:
		return "Good run. A little more practice and it is perfect."
	default:
		return "Worth revisiting this topic before the next try."
	}
}

func (a *App) OnOpenStats() {
	a.mu.Lock()
	lang := a.selector.CurrentLanguage()
	topic := a.selector.CurrentTopic()
	a.mu.Unlock()

	if a.store == nil {
		a.view.SetInfo("Stats", "Stats are unavailable: local storage is degraded.", true)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	summary, err := a.store.GetSummary(ctx)
	if err != nil {
		a.view.SetInfo("Stats", "Failed to load stats: "+err.Error(), true)
		return
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Topics attempted: %d\nWarmup attempts: %d\n", summary.TopicsAttempted, summary.Attempts))
	if summary.BestTotalSum > 0 {
		b.WriteString(fmt.Sprintf("Best scores combined: %d of %d\n", summary.BestScoreSum, summary.BestTotalSum))
	}
	if stats, err := a.store.GetWarmupStats(ctx, lang, topic); err == nil && stats != nil {
		b.WriteString(fmt.Sprintf("\n%s / %s\nAttempts: %d  Best: %d of %d\n",
			stats.Language, stats.Topic, stats.Attempts, stats.BestScore, stats.BestTotal))
	}
	a.view.SetInfo("Stats", strings.TrimSuffix(b.String(), "\n"), true)
}

func (a *App) OnToggleDarkMode() {
	a.mu.Lock()
	a.settings.DarkMode = !a.settings.DarkMode
	dark := a.settings.DarkMode
	if a.settings.AutoSave {
		a.persistSettingsLocked()
	}
	a.mu.Unlock()

	a.view.SetDarkMode(dark)
	if dark {
		a.view.FlashStatus("Dark mode on")
	} else {
		a.view.FlashStatus("Dark mode off")
	}
}

// OnAdjustFontSize steps the content sizing preference and feeds the new
// size back into the view. The size sticks to the 8..32 range.
func (a *App) OnAdjustFontSize(delta int) {
	a.mu.Lock()
	size := clampFontSize(a.settings.FontSize + delta)
	changed := size != a.settings.FontSize
	a.settings.FontSize = size
	if changed && a.settings.AutoSave {
		a.persistSettingsLocked()
	}
	a.mu.Unlock()

	if changed {
		a.view.SetFontSize(size)
	}
	a.view.FlashStatus(fmt.Sprintf("Font size %d", size))
}

func (a *App) OnDismissWelcome() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.settings.ShowWelcome {
		return
	}
	a.settings.ShowWelcome = false
	if a.settings.AutoSave {
		a.persistSettingsLocked()
	}
}

func (a *App) OnQuit() {
	a.view.Stop()
}

func (a *App) OnResize(cols, rows int) {
	// Layout is computed inside the view; nothing to do here yet.
	_ = cols
	_ = rows
}

var _ ui.Controller = (*App)(nil)
