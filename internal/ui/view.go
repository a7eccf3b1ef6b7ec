package ui

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/harmonica"
	clog "github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
)

type applyMsg struct {
	fn func(*Root)
}

type drawMsg struct{}
type clockMsg time.Time
type animateMsg time.Time

type searchDebounceMsg struct {
	seq int
}

const (
	searchDebounce = 500 * time.Millisecond
	statusFlashTTL = 3 * time.Second
)

type browseKeyMap struct {
	Search    key.Binding
	Favorite  key.Binding
	Run       key.Binding
	Export    key.Binding
	Copy      key.Binding
	Warmup    key.Binding
	Favorites key.Binding
	History   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Favorite, k.Copy, k.Run, k.Warmup, k.Help, k.Quit}
}

func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Favorite, k.Copy, k.Run, k.Export},
		{k.Warmup, k.Favorites, k.History, k.Help, k.Quit},
	}
}

const (
	focusLanguages = iota
	focusTopics
	focusSnippets
)

type Root struct {
	theme       Theme
	ascii       bool
	debug       bool
	ctrl        Controller
	darkMode    bool
	fontSize    int
	motionLevel string
	mouseScope  string

	mu      sync.Mutex
	program *tea.Program
	running bool

	screen Screen
	layout LayoutMode
	cols   int
	rows   int

	forceTooSmall bool
	tooSmallCols  int
	tooSmallRows  int

	browse       BrowseState
	catalog      []LanguageSummary
	warmup       WarmupState
	warmupResult WarmupResult
	runOutput    RunOutputState

	favoriteRows []FavoriteRow
	historyRows  []HistoryRow
	infoTitle    string
	infoText     string
	statusFlash  string
	flashedAt    time.Time
	runInFlight  bool

	welcomeOpen   bool
	helpOpen      bool
	favoritesOpen bool
	historyOpen   bool
	infoOpen      bool

	browseFocus   int
	languageIndex int
	topicIndex    int
	snippetIndex  int
	favIndex      int
	histIndex     int

	search    textinput.Model
	searchSeq int

	help       help.Model
	keymap     browseKeyMap
	quizBar    progress.Model
	runSpin    spinner.Model
	markdown   *glamour.TermRenderer
	logger     *clog.Logger
	overlayPos float64
	overlayVel float64
	spring     harmonica.Spring

	drawPending atomic.Bool

	lastInputEvent string
}

type Options struct {
	ASCIIOnly   bool
	Debug       bool
	DarkMode    bool
	FontSize    int
	MotionLevel string
	MouseScope  string
}

func New(opts Options) *Root {
	logger := clog.NewWithOptions(os.Stderr, clog.Options{Prefix: "codeaid-ui", Level: clog.WarnLevel})
	if opts.Debug {
		logger.SetLevel(clog.DebugLevel)
	}

	variant := "dark"
	if !opts.DarkMode {
		variant = "light"
	}
	theme := ThemeForVariant(variant)
	fontSize := normalizeFontSize(opts.FontSize)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(variant),
		glamour.WithWordWrap(markdownWrap(fontSize)),
	)
	if err != nil {
		renderer = nil
	}

	h := help.New()
	if opts.DarkMode {
		h.Styles = help.DefaultDarkStyles()
	} else {
		h.Styles = help.DefaultLightStyles()
	}

	motionLevel := normalizeMotionLevel(opts.MotionLevel)
	mouseScope := normalizeMouseScope(opts.MouseScope)
	spring := harmonica.NewSpring(harmonica.FPS(60), 10.0, 0.8)
	switch motionLevel {
	case "reduced":
		spring = harmonica.NewSpring(harmonica.FPS(30), 9.0, 0.92)
	case "off":
		spring = harmonica.NewSpring(harmonica.FPS(60), 1000.0, 1.0)
	}

	quizBar := progress.New(
		progress.WithWidth(24),
		progress.WithColors(lipgloss.Color("#5EC2FF"), lipgloss.Color("#79E6A6"), lipgloss.Color("#F2D16B")),
		progress.WithScaled(true),
	)
	if motionLevel == "off" {
		quizBar.SetSpringOptions(1000.0, 1.0)
	}
	runSpin := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(theme.Accent),
	)

	search := textinput.New()
	search.Placeholder = "search snippets"
	search.CharLimit = 120
	search.SetWidth(28)

	r := &Root{
		theme:       theme,
		ascii:       opts.ASCIIOnly,
		debug:       opts.Debug,
		darkMode:    opts.DarkMode,
		fontSize:    fontSize,
		motionLevel: motionLevel,
		mouseScope:  mouseScope,
		screen:      ScreenBrowse,
		layout:      LayoutWide,
		cols:        120,
		rows:        30,
		help:        h,
		quizBar:     quizBar,
		runSpin:     runSpin,
		search:      search,
		markdown:    renderer,
		logger:      logger,
		spring:      spring,
	}
	r.keymap = browseKeyMap{
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "Search")),
		Favorite:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "Favorite")),
		Run:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Run")),
		Export:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "Export")),
		Copy:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "Copy")),
		Warmup:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "Warmup")),
		Favorites: key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "Favorites")),
		History:   key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "History")),
		Help:      key.NewBinding(key.WithKeys("f1", "?"), key.WithHelp("F1", "Help")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("Ctrl+Q", "Quit")),
	}
	return r
}

func (r *Root) Init() tea.Cmd {
	return tea.Batch(clockTickCmd(), animateTickCmd(), spinnerTickCmd(r.runSpin))
}

func (r *Root) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("update", rec, msg)
			model = r
			cmd = nil
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.cols = msg.Width
		r.rows = msg.Height
		r.layout = DetermineLayoutMode(r.cols, r.rows)
		if r.layout != LayoutTooSmall {
			r.forceTooSmall = false
		}
		r.dispatchController(func(c Controller) { c.OnResize(msg.Width, msg.Height) })
		return r, nil
	case applyMsg:
		if msg.fn != nil {
			msg.fn(r)
		}
		return r, r.animateIfNeeded()
	case drawMsg:
		r.drawPending.Store(false)
		return r, nil
	case clockMsg:
		if r.statusFlash != "" && time.Since(r.flashedAt) >= statusFlashTTL {
			r.statusFlash = ""
		}
		return r, clockTickCmd()
	case animateMsg:
		target := 0.0
		if r.warmupResult.Visible {
			target = 1.0
		}
		r.overlayPos, r.overlayVel = r.spring.Update(r.overlayPos, r.overlayVel, target)
		if r.shouldAnimate(target) {
			return r, animateTickCmd()
		}
		if target == 0 {
			r.overlayPos = 0
			r.overlayVel = 0
		} else {
			r.overlayPos = 1
			r.overlayVel = 0
		}
		return r, nil
	case searchDebounceMsg:
		if msg.seq == r.searchSeq {
			query := r.search.Value()
			r.dispatchController(func(c Controller) { c.OnSearch(query) })
		}
		return r, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		r.runSpin, cmd = r.runSpin.Update(msg)
		return r, cmd
	case tea.MouseClickMsg:
		return r.handleMouseClick(msg)
	case tea.MouseWheelMsg:
		return r.handleMouseWheel(msg)
	case tea.KeyPressMsg:
		return r.handleKey(msg)
	}
	return r, nil
}

func (r *Root) View() (view tea.View) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("view", rec, nil)
			width := max(1, r.cols)
			msg := "UI recovered from a rendering panic. Check logs."
			if r.statusFlash == "" {
				r.flash("Recovered UI panic")
			}
			view = tea.NewView(r.theme.Fail.Width(width).Render(trimForWidth(msg, max(1, width-1))))
		}
	}()

	if r.cols < 1 {
		r.cols = 120
	}
	if r.rows < 1 {
		r.rows = 30
	}

	var base string
	switch r.screen {
	case ScreenWarmup:
		base = r.renderWarmup()
	default:
		base = r.renderBrowse()
	}

	if overlay := r.renderOverlay(); overlay != "" {
		base = composeOverlay(base, overlay, r.cols, r.rows)
	}
	v := tea.NewView(base)
	v.AltScreen = true
	v.MouseMode = r.currentMouseMode()
	v.DisableBracketedPasteMode = false
	return v
}

func (r *Root) Run() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	p := tea.NewProgram(r)
	r.program = p
	r.running = true
	r.mu.Unlock()

	_, err := p.Run()

	r.mu.Lock()
	r.program = nil
	r.running = false
	r.mu.Unlock()
	return err
}

func (r *Root) Stop() {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		p.Quit()
	}
}

func (r *Root) SetController(c Controller) {
	r.ctrl = c
}

func (r *Root) SetScreen(screen Screen) {
	r.apply(func(m *Root) {
		m.screen = screen
	})
}

func (r *Root) SetCatalog(languages []LanguageSummary) {
	r.apply(func(m *Root) {
		m.catalog = append([]LanguageSummary(nil), languages...)
		m.syncCatalogSelection()
	})
}

func (r *Root) SetSelection(language, topic string) {
	r.apply(func(m *Root) {
		m.browse.Language = language
		m.browse.Topic = topic
		m.syncCatalogSelection()
	})
}

func (r *Root) SetBrowseState(s BrowseState) {
	r.apply(func(m *Root) {
		m.browse = s
		if m.snippetIndex >= len(s.Rows) {
			m.snippetIndex = max(0, len(s.Rows)-1)
		}
		m.syncCatalogSelection()
	})
}

func (r *Root) SetFavorites(rows []FavoriteRow, open bool) {
	r.apply(func(m *Root) {
		m.favoriteRows = append([]FavoriteRow(nil), rows...)
		m.favoritesOpen = open
		if m.favIndex >= len(m.favoriteRows) {
			m.favIndex = max(0, len(m.favoriteRows)-1)
		}
	})
}

func (r *Root) SetHistory(rows []HistoryRow, open bool) {
	r.apply(func(m *Root) {
		m.historyRows = append([]HistoryRow(nil), rows...)
		m.historyOpen = open
		if m.histIndex >= len(m.historyRows) {
			m.histIndex = max(0, len(m.historyRows)-1)
		}
	})
}

func (r *Root) SetWarmupState(s WarmupState) {
	r.apply(func(m *Root) {
		m.warmup = s
	})
}

func (r *Root) SetWarmupResult(res WarmupResult) {
	r.apply(func(m *Root) {
		m.warmupResult = res
		if m.motionLevel == "off" {
			if res.Visible {
				m.overlayPos = 1
			} else {
				m.overlayPos = 0
			}
			m.overlayVel = 0
		}
	})
}

func (r *Root) SetRunOutput(s RunOutputState) {
	r.apply(func(m *Root) {
		m.runOutput = s
	})
}

func (r *Root) SetInfo(title, text string, open bool) {
	r.apply(func(m *Root) {
		m.infoTitle = title
		m.infoText = text
		m.infoOpen = open
	})
}

func (r *Root) SetWelcomeOpen(open bool) {
	r.apply(func(m *Root) {
		m.welcomeOpen = open
	})
}

func (r *Root) SetRunning(running bool) {
	r.apply(func(m *Root) {
		m.runInFlight = running
	})
}

func (r *Root) SetDarkMode(dark bool) {
	r.apply(func(m *Root) {
		m.darkMode = dark
		variant := "light"
		if dark {
			variant = "dark"
		}
		m.theme = ThemeForVariant(variant)
		if dark {
			m.help.Styles = help.DefaultDarkStyles()
		} else {
			m.help.Styles = help.DefaultLightStyles()
		}
		if renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(variant),
			glamour.WithWordWrap(markdownWrap(m.fontSize)),
		); err == nil {
			m.markdown = renderer
		}
	})
}

// SetFontSize rescales the content panes and markdown wrap width. Sizes
// outside 8..32 are clamped, zero falls back to the default.
func (r *Root) SetFontSize(size int) {
	r.apply(func(m *Root) {
		m.fontSize = normalizeFontSize(size)
		variant := "light"
		if m.darkMode {
			variant = "dark"
		}
		if renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(variant),
			glamour.WithWordWrap(markdownWrap(m.fontSize)),
		); err == nil {
			m.markdown = renderer
		}
	})
}

func (r *Root) FlashStatus(msg string) {
	r.apply(func(m *Root) {
		m.flash(msg)
	})
}

func (r *Root) flash(msg string) {
	r.statusFlash = msg
	r.flashedAt = time.Now()
}

func (r *Root) RequestDraw() {
	r.mu.Lock()
	p := r.program
	running := r.running
	r.mu.Unlock()
	if !running || p == nil {
		return
	}
	if !r.drawPending.CompareAndSwap(false, true) {
		return
	}
	time.AfterFunc(16*time.Millisecond, func() {
		r.mu.Lock()
		p := r.program
		running := r.running
		r.mu.Unlock()
		if !running || p == nil {
			r.drawPending.Store(false)
			return
		}
		p.Send(drawMsg{})
	})
}

func (r *Root) apply(fn func(*Root)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	p := r.program
	running := r.running
	if !running || p == nil {
		fn(r)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	p.Send(applyMsg{fn: fn})
}

func (r *Root) dispatchController(fn func(Controller)) {
	if fn == nil || r.ctrl == nil {
		return
	}
	ctrl := r.ctrl
	go fn(ctrl)
}

func (r *Root) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	r.recordInputEvent(fmt.Sprintf("key:%v mod:%v text:%q", msg.Code, msg.Mod, msg.Text))

	if key.Matches(msg, r.keymap.Quit) {
		r.dispatchController(func(c Controller) { c.OnQuit() })
		return r, nil
	}

	if r.overlayActive() {
		return r.handleOverlayKey(msg)
	}

	if r.search.Focused() {
		return r.handleSearchKey(msg)
	}

	switch r.screen {
	case ScreenWarmup:
		return r.handleWarmupKey(msg)
	default:
		return r.handleBrowseKey(msg)
	}
}

func (r *Root) handleSearchKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.Code {
	case tea.KeyEsc:
		r.search.SetValue("")
		r.search.Blur()
		r.searchSeq++
		r.dispatchController(func(c Controller) { c.OnSearch("") })
		return r, nil
	case tea.KeyEnter:
		r.search.Blur()
		query := r.search.Value()
		r.searchSeq++
		r.dispatchController(func(c Controller) { c.OnSearch(query) })
		return r, nil
	}
	before := r.search.Value()
	var cmd tea.Cmd
	r.search, cmd = r.search.Update(msg)
	if r.search.Value() != before {
		r.searchSeq++
		seq := r.searchSeq
		return r, tea.Batch(cmd, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
			return searchDebounceMsg{seq: seq}
		}))
	}
	return r, cmd
}

func (r *Root) handleBrowseKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.Code {
	case tea.KeyF1:
		r.helpOpen = true
		return r, nil
	case tea.KeyF2:
		r.dispatchController(func(c Controller) { c.OnShowFavorites() })
		return r, nil
	case tea.KeyF3:
		r.dispatchController(func(c Controller) { c.OnShowHistory() })
		return r, nil
	case tea.KeyLeft:
		r.browseFocus = wrapIndex(r.browseFocus-1, 3)
		return r, nil
	case tea.KeyRight, tea.KeyTab:
		r.browseFocus = wrapIndex(r.browseFocus+1, 3)
		return r, nil
	case tea.KeyUp:
		r.moveBrowseSelection(-1)
		return r, nil
	case tea.KeyDown:
		r.moveBrowseSelection(1)
		return r, nil
	case tea.KeyEnter:
		r.activateBrowseSelection()
		return r, nil
	case tea.KeyEsc:
		if r.browse.Query != "" || r.search.Value() != "" {
			r.search.SetValue("")
			r.searchSeq++
			r.dispatchController(func(c Controller) { c.OnSearch("") })
		}
		return r, nil
	}

	switch {
	case msg.Mod == 0 && msg.Code == '/':
		return r, r.search.Focus()
	case msg.Mod == 0 && (msg.Code == '?'):
		r.helpOpen = true
		return r, nil
	case msg.Mod == 0 && (msg.Code == 'f' || msg.Code == 'F'):
		if row, ok := r.selectedSnippetRow(); ok {
			idx := row.Index
			r.dispatchController(func(c Controller) { c.OnToggleFavorite(idx) })
		}
		return r, nil
	case msg.Mod == 0 && (msg.Code == 'c' || msg.Code == 'C'):
		if r.browse.HasDetail && strings.TrimSpace(r.browse.Detail.Code) != "" {
			r.flash("Code copied")
			return r, tea.SetClipboard(r.browse.Detail.Code)
		}
		return r, nil
	case msg.Mod == 0 && (msg.Code == 'r' || msg.Code == 'R'):
		if row, ok := r.selectedSnippetRow(); ok {
			idx := row.Index
			r.dispatchController(func(c Controller) { c.OnRunSnippet(idx) })
		}
		return r, nil
	case msg.Mod == 0 && (msg.Code == 'e' || msg.Code == 'E'):
		if row, ok := r.selectedSnippetRow(); ok {
			idx := row.Index
			r.dispatchController(func(c Controller) { c.OnExportSnippet(idx) })
		}
		return r, nil
	case msg.Mod == 0 && (msg.Code == 'w' || msg.Code == 'W'):
		r.dispatchController(func(c Controller) { c.OnStartWarmup() })
		return r, nil
	case msg.Mod == 0 && (msg.Code == 't' || msg.Code == 'T'):
		r.dispatchController(func(c Controller) { c.OnToggleDarkMode() })
		return r, nil
	case msg.Mod == 0 && (msg.Code == 's' || msg.Code == 'S'):
		r.dispatchController(func(c Controller) { c.OnOpenStats() })
		return r, nil
	case msg.Mod == 0 && (msg.Code == '+' || msg.Code == '='):
		r.dispatchController(func(c Controller) { c.OnAdjustFontSize(1) })
		return r, nil
	case msg.Mod == 0 && msg.Code == '-':
		r.dispatchController(func(c Controller) { c.OnAdjustFontSize(-1) })
		return r, nil
	}
	return r, nil
}

func (r *Root) handleWarmupKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.Mod == 0 && msg.Code >= '1' && msg.Code <= '9' {
		option := int(msg.Code - '1')
		if option < len(r.warmup.Options) {
			r.dispatchController(func(c Controller) { c.OnAnswerQuestion(option) })
		}
		return r, nil
	}

	switch msg.Code {
	case tea.KeyLeft:
		r.dispatchController(func(c Controller) { c.OnPrevQuestion() })
	case tea.KeyRight:
		r.dispatchController(func(c Controller) { c.OnNextQuestion() })
	case tea.KeyEnter:
		if r.warmup.Index >= r.warmup.Total-1 && r.warmup.Answered {
			r.dispatchController(func(c Controller) { c.OnFinishWarmup() })
		} else if r.warmup.Answered {
			r.dispatchController(func(c Controller) { c.OnNextQuestion() })
		}
	case tea.KeyEsc:
		r.dispatchController(func(c Controller) { c.OnResetWarmup() })
	}
	return r, nil
}

func (r *Root) handleOverlayKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if (msg.Code == 'c' || msg.Code == 'C') && msg.Mod&tea.ModCtrl != 0 {
		text := r.overlayCopyText()
		if strings.TrimSpace(text) == "" {
			return r, nil
		}
		r.flash("Copied overlay text")
		return r, tea.SetClipboard(text)
	}

	if msg.Code == tea.KeyEsc || msg.Code == tea.KeyEscape ||
		(msg.Mod == 0 && (msg.Code == 'q' || msg.Code == 'Q')) {
		r.dismissTopOverlay()
		return r, r.animateIfNeeded()
	}

	switch r.topOverlay() {
	case "welcome":
		if msg.Code == tea.KeyEnter {
			r.dismissTopOverlay()
			return r, r.animateIfNeeded()
		}
	case "favorites":
		switch msg.Code {
		case tea.KeyUp:
			r.favIndex = wrapIndex(r.favIndex-1, len(r.favoriteRows))
		case tea.KeyDown, tea.KeyTab:
			r.favIndex = wrapIndex(r.favIndex+1, len(r.favoriteRows))
		case tea.KeyEnter:
			if r.favIndex >= 0 && r.favIndex < len(r.favoriteRows) {
				keyStr := r.favoriteRows[r.favIndex].Key
				r.favoritesOpen = false
				r.dispatchController(func(c Controller) { c.OnOpenFavorite(keyStr) })
			}
		}
	case "history":
		switch msg.Code {
		case tea.KeyUp:
			r.histIndex = wrapIndex(r.histIndex-1, len(r.historyRows))
		case tea.KeyDown, tea.KeyTab:
			r.histIndex = wrapIndex(r.histIndex+1, len(r.historyRows))
		}
	case "warmup_result":
		if msg.Code == tea.KeyEnter {
			r.dismissTopOverlay()
			return r, r.animateIfNeeded()
		}
	}
	return r, nil
}

func (r *Root) dismissTopOverlay() {
	switch r.topOverlay() {
	case "info":
		r.infoOpen = false
		r.infoText = ""
		r.infoTitle = ""
	case "run_output":
		r.runOutput = RunOutputState{}
	case "warmup_result":
		r.warmupResult = WarmupResult{}
	case "welcome":
		r.welcomeOpen = false
		r.dispatchController(func(c Controller) { c.OnDismissWelcome() })
	case "help":
		r.helpOpen = false
	case "history":
		r.historyOpen = false
		r.histIndex = 0
	case "favorites":
		r.favoritesOpen = false
		r.favIndex = 0
	}
}

func (r *Root) moveBrowseSelection(delta int) {
	switch r.browseFocus {
	case focusLanguages:
		if len(r.catalog) == 0 {
			return
		}
		r.languageIndex = wrapIndex(r.languageIndex+delta, len(r.catalog))
		name := r.catalog[r.languageIndex].Name
		r.topicIndex = 0
		r.snippetIndex = 0
		r.dispatchController(func(c Controller) { c.OnSelectLanguage(name) })
	case focusTopics:
		topics := r.selectedLanguageTopics()
		if len(topics) == 0 {
			return
		}
		r.topicIndex = wrapIndex(r.topicIndex+delta, len(topics))
		name := topics[r.topicIndex]
		r.snippetIndex = 0
		r.dispatchController(func(c Controller) { c.OnSelectTopic(name) })
	case focusSnippets:
		if len(r.browse.Rows) == 0 {
			return
		}
		r.snippetIndex = wrapIndex(r.snippetIndex+delta, len(r.browse.Rows))
	}
}

func (r *Root) activateBrowseSelection() {
	switch r.browseFocus {
	case focusLanguages, focusTopics:
		r.browseFocus = wrapIndex(r.browseFocus+1, 3)
	case focusSnippets:
		if row, ok := r.selectedSnippetRow(); ok {
			idx := row.Index
			r.dispatchController(func(c Controller) { c.OnSelectSnippet(idx) })
		}
	}
}

func (r *Root) selectedSnippetRow() (SnippetRow, bool) {
	if len(r.browse.Rows) == 0 {
		return SnippetRow{}, false
	}
	idx := wrapIndex(r.snippetIndex, len(r.browse.Rows))
	return r.browse.Rows[idx], true
}

func (r *Root) selectedLanguageTopics() []string {
	if len(r.catalog) == 0 {
		return nil
	}
	idx := wrapIndex(r.languageIndex, len(r.catalog))
	return r.catalog[idx].Topics
}

func (r *Root) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	mouse := msg.Mouse()
	r.recordInputEvent(fmt.Sprintf("mouse_click:%d,%d button:%v", mouse.X, mouse.Y, mouse.Button))

	if r.mouseScope == "off" || mouse.Button != tea.MouseLeft {
		return r, nil
	}
	if r.overlayActive() || r.screen != ScreenBrowse {
		return r, nil
	}

	leftW := r.sidebarWidth()
	listW := r.snippetListWidth()
	idx := mouse.Y - 2
	if idx < 0 {
		return r, nil
	}
	if mouse.X >= 1 && mouse.X < leftW-1 {
		if idx < len(r.catalog) {
			r.browseFocus = focusLanguages
			r.languageIndex = idx
			name := r.catalog[idx].Name
			r.dispatchController(func(c Controller) { c.OnSelectLanguage(name) })
			return r, nil
		}
		topics := r.selectedLanguageTopics()
		topicIdx := idx - len(r.catalog) - 2
		if topicIdx >= 0 && topicIdx < len(topics) {
			r.browseFocus = focusTopics
			r.topicIndex = topicIdx
			name := topics[topicIdx]
			r.dispatchController(func(c Controller) { c.OnSelectTopic(name) })
		}
		return r, nil
	}
	if mouse.X >= leftW+1 && mouse.X < leftW+listW-1 {
		if idx < len(r.browse.Rows) {
			r.browseFocus = focusSnippets
			r.snippetIndex = idx
			row := r.browse.Rows[idx]
			r.dispatchController(func(c Controller) { c.OnSelectSnippet(row.Index) })
		}
		return r, nil
	}
	return r, nil
}

func (r *Root) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	mouse := msg.Mouse()
	r.recordInputEvent(fmt.Sprintf("mouse_wheel:%d,%d button:%v", mouse.X, mouse.Y, mouse.Button))

	if r.mouseScope == "off" {
		return r, nil
	}
	delta := 0
	if mouse.Button == tea.MouseWheelUp {
		delta = -1
	} else if mouse.Button == tea.MouseWheelDown {
		delta = 1
	}
	if delta == 0 {
		return r, nil
	}

	if r.overlayActive() {
		switch r.topOverlay() {
		case "history":
			r.histIndex = clamp(r.histIndex+delta, 0, max(0, len(r.historyRows)-1))
		case "favorites":
			r.favIndex = clamp(r.favIndex+delta, 0, max(0, len(r.favoriteRows)-1))
		}
		return r, nil
	}
	if r.screen == ScreenBrowse && len(r.browse.Rows) > 0 {
		r.browseFocus = focusSnippets
		r.snippetIndex = clamp(r.snippetIndex+delta, 0, len(r.browse.Rows)-1)
	}
	return r, nil
}

func (r *Root) renderBrowse() string {
	w, h := r.cols, r.rows
	mode := DetermineLayoutMode(w, h)
	if r.forceTooSmall {
		mode = LayoutTooSmall
	}
	r.layout = mode

	if mode == LayoutTooSmall {
		cols, rows := w, h
		if r.forceTooSmall {
			cols = r.tooSmallCols
			rows = r.tooSmallRows
		}
		msg := []string{
			"Terminal too small",
			fmt.Sprintf("Current: %dx%d", cols, rows),
			"Minimum: 80x24",
			"Resize the terminal to continue.",
		}
		panel := r.drawPanel("Resize Required", msg, min(60, w), min(12, h))
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, panel)
	}

	header := r.headerText()
	status := r.statusText()
	bodyH := max(3, h-2)

	sidebar := r.drawPanel("Catalog", r.sidebarLines(), r.sidebarWidth(), bodyH)
	list := r.drawPanel(r.snippetListTitle(), r.snippetListLines(), r.snippetListWidth(), bodyH)

	var body string
	if mode == LayoutWide {
		detailW := max(24, w-lipgloss.Width(sidebar)-lipgloss.Width(list))
		detail := r.drawPanel("Snippet", r.detailLines(detailW-2), detailW, bodyH)
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, list, detail)
	} else {
		detailW := max(24, w-lipgloss.Width(list))
		detail := r.drawPanel("Snippet", r.detailLines(detailW-2), detailW, bodyH)
		body = lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
	}
	return header + "\n" + body + "\n" + status
}

func (r *Root) sidebarWidth() int {
	return min(30, max(22, r.cols/5+(r.fontSize-defaultFontSize)/2))
}

func (r *Root) snippetListWidth() int {
	return min(44, max(26, r.cols/3+r.fontSize-defaultFontSize))
}

func (r *Root) sidebarLines() []string {
	lines := make([]string, 0, len(r.catalog)+8)
	for i, lang := range r.catalog {
		prefix := "  "
		if i == r.languageIndex {
			prefix = "> "
			if r.browseFocus != focusLanguages {
				prefix = "* "
			}
		}
		lines = append(lines, prefix+lang.Name)
	}
	if len(lines) == 0 {
		lines = append(lines, "No languages loaded.")
	}
	lines = append(lines, "", "Topics")
	topics := r.selectedLanguageTopics()
	for i, t := range topics {
		prefix := "  "
		if i == r.topicIndex {
			prefix = "> "
			if r.browseFocus != focusTopics {
				prefix = "* "
			}
		}
		lines = append(lines, prefix+t)
	}
	if len(topics) == 0 {
		lines = append(lines, "  (none)")
	}
	return lines
}

func (r *Root) snippetListTitle() string {
	if strings.TrimSpace(r.browse.Query) != "" {
		return fmt.Sprintf("Snippets (filter: %s)", trimForWidth(r.browse.Query, 16))
	}
	return "Snippets"
}

func (r *Root) snippetListLines() []string {
	lines := make([]string, 0, len(r.browse.Rows)+2)
	if r.search.Focused() || r.search.Value() != "" {
		lines = append(lines, ansi.Strip(r.search.View()), "")
	}
	star := "★"
	if r.ascii {
		star = "*"
	}
	for i, row := range r.browse.Rows {
		prefix := "  "
		if i == wrapIndex(r.snippetIndex, max(1, len(r.browse.Rows))) && len(r.browse.Rows) > 0 {
			prefix = "> "
			if r.browseFocus != focusSnippets {
				prefix = "* "
			}
		}
		mark := "  "
		if row.Favorite {
			mark = star + " "
		}
		lines = append(lines, prefix+mark+row.Title)
	}
	if len(r.browse.Rows) == 0 {
		if strings.TrimSpace(r.browse.Query) != "" {
			lines = append(lines, "No snippets match the filter.")
		} else {
			lines = append(lines, "No snippets in this topic.")
		}
	}
	return lines
}

func (r *Root) detailLines(width int) []string {
	if !r.browse.HasDetail {
		return []string{"Select a snippet to view it."}
	}
	d := r.browse.Detail
	var b strings.Builder
	b.WriteString(d.Title + "\n")
	if strings.TrimSpace(d.Complexity) != "" {
		b.WriteString("Complexity: " + d.Complexity + "\n")
	}
	if len(d.Tags) > 0 {
		b.WriteString("Tags: " + strings.Join(d.Tags, ", ") + "\n")
	}
	b.WriteString("\nCode\n")
	for _, line := range strings.Split(strings.TrimRight(d.Code, "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}
	if strings.TrimSpace(d.Explanation) != "" {
		b.WriteString("\nExplanation\n")
		b.WriteString(d.Explanation + "\n")
	}
	if strings.TrimSpace(d.UseCase) != "" {
		b.WriteString("\nUse case\n")
		b.WriteString(d.UseCase + "\n")
	}
	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	for i := range lines {
		lines[i] = trimForWidth(lines[i], max(8, width))
	}
	return lines
}

func (r *Root) renderWarmup() string {
	w, h := r.cols, r.rows
	header := r.headerText()
	status := r.statusText()
	bodyH := max(3, h-2)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s / %s\n", r.warmup.Language, r.warmup.Topic))
	b.WriteString(fmt.Sprintf("Question %d of %d    Score: %d\n", r.warmup.Index+1, r.warmup.Total, r.warmup.Score))
	b.WriteString(r.warmupProgressBar(28) + "\n\n")
	b.WriteString(r.warmup.Prompt + "\n\n")
	for i, opt := range r.warmup.Options {
		marker := fmt.Sprintf("%d.", i+1)
		suffix := ""
		if r.warmup.Answered {
			if i == r.warmup.CorrectIndex {
				if r.ascii {
					suffix = "  [correct]"
				} else {
					suffix = "  ✓"
				}
			} else if i == r.warmup.Chosen {
				if r.ascii {
					suffix = "  [your answer]"
				} else {
					suffix = "  ✗"
				}
			}
		}
		b.WriteString(fmt.Sprintf("%s %s%s\n", marker, opt, suffix))
	}
	b.WriteString("\n")
	if r.warmup.Answered {
		if r.warmup.Chosen == r.warmup.CorrectIndex {
			b.WriteString("Correct.\n")
		} else {
			b.WriteString(fmt.Sprintf("Wrong. Correct answer: %d.\n", r.warmup.CorrectIndex+1))
		}
	}
	b.WriteString("\n1-9: Answer    Left/Right: Navigate    Enter: Next/Finish    Esc: Discard")

	panel := r.drawPanel("Warmup", strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n"), min(90, w), bodyH)
	body := lipgloss.Place(w, bodyH, lipgloss.Center, lipgloss.Top, panel)
	return header + "\n" + body + "\n" + status
}

func (r *Root) warmupProgressBar(width int) string {
	bar := r.quizBar
	bar.SetWidth(max(8, width))
	if r.warmup.Total == 0 {
		return bar.ViewAs(0)
	}
	done := r.warmup.Index
	if r.warmup.Answered {
		done++
	}
	return bar.ViewAs(float64(done) / float64(r.warmup.Total))
}

func (r *Root) renderOverlay() string {
	spec, ok := r.overlaySpec(r.topOverlay())
	if !ok {
		return ""
	}
	return r.drawPanel(spec.title, spec.lines, spec.width, spec.height)
}

type overlaySpec struct {
	title    string
	lines    []string
	width    int
	height   int
	startRow int
	startCol int
}

func (r *Root) overlaySpec(top string) (overlaySpec, bool) {
	if top == "" {
		return overlaySpec{}, false
	}
	w := min(max(56, r.cols-12), r.cols)
	h := min(max(10, r.rows/2), max(8, r.rows-4))

	var title string
	var lines []string
	switch top {
	case "welcome":
		title = "Welcome"
		lines = strings.Split(strings.TrimSuffix(r.welcomeText(), "\n"), "\n")
		lines = append(lines, "", "Enter/Esc: Close")
	case "help":
		title = "Help"
		lines = strings.Split(strings.TrimSuffix(r.helpText(), "\n"), "\n")
		lines = append(lines, "", "Esc/q: Close")
	case "favorites":
		title = "Favorites"
		if len(r.favoriteRows) == 0 {
			lines = []string{"No favorites yet. Press f on a snippet to add one."}
		} else {
			for i, row := range r.favoriteRows {
				prefix := "  "
				if i == r.favIndex {
					prefix = "> "
				}
				lines = append(lines, fmt.Sprintf("%s%s / %s / %s", prefix, row.Language, row.Topic, row.Title))
			}
		}
		lines = append(lines, "", "Enter: Open    Esc: Close")
	case "history":
		title = "History"
		if len(r.historyRows) == 0 {
			lines = []string{"No snippets viewed yet."}
		} else {
			for i, row := range r.historyRows {
				prefix := "  "
				if i == r.histIndex {
					prefix = "> "
				}
				lines = append(lines, fmt.Sprintf("%s%s / %s / %s", prefix, row.Language, row.Topic, row.Title))
			}
		}
		lines = append(lines, "", "Esc: Close")
	case "run_output":
		title = firstNonEmptyStr(r.runOutput.Title, "Run Output")
		verdict := fmt.Sprintf("exit code %d in %dms", r.runOutput.ExitCode, r.runOutput.DurationMS)
		if r.runOutput.TimedOut {
			verdict = "timed out"
		}
		lines = append(lines, verdict, "")
		out := strings.TrimRight(r.runOutput.Output, "\n")
		if strings.TrimSpace(out) == "" {
			out = "(no output)"
		}
		lines = append(lines, strings.Split(out, "\n")...)
		lines = append(lines, "", "Ctrl+C: Copy output    Esc/q: Close")
	case "warmup_result":
		title = "Warmup Result"
		lines = []string{
			fmt.Sprintf("Score: %d of %d", r.warmupResult.Score, r.warmupResult.Total),
			"",
			r.warmupResult.Message,
			"",
			"Enter/Esc: Back to browsing",
		}
	case "info":
		title = firstNonEmptyStr(r.infoTitle, "Info")
		lines = strings.Split(strings.TrimSuffix(r.infoText, "\n"), "\n")
		lines = append(lines, "", "Ctrl+C: Copy text", "Esc/q: Close")
	default:
		return overlaySpec{}, false
	}
	if len(lines) == 0 {
		lines = []string{"(empty)"}
	}
	needH := len(lines) + 2
	maxH := max(8, r.rows-4)
	if needH > h {
		h = min(needH, maxH)
	}
	return overlaySpec{
		title:    title,
		lines:    lines,
		width:    w,
		height:   h,
		startRow: (r.rows - h) / 2,
		startCol: (r.cols - w) / 2,
	}, true
}

func (r *Root) welcomeText() string {
	md := strings.Join([]string{
		"# Code Aid",
		"",
		"Browse code snippets by language and topic, keep favorites,",
		"and take short warmup quizzes.",
		"",
		"- Arrow keys move between panels and items",
		"- `/` filters snippets, `f` toggles a favorite",
		"- `r` runs a Python snippet, `e` exports to a file",
		"- `w` starts a warmup quiz for the current topic",
	}, "\n")
	if r.markdown != nil {
		if rendered, err := r.markdown.Render(md); err == nil {
			return ansi.Strip(strings.TrimSpace(rendered))
		}
	}
	return md
}

func (r *Root) helpText() string {
	md := strings.Join([]string{
		"## Keys",
		"",
		"| Key | Action |",
		"| --- | --- |",
		"| Left/Right/Tab | Switch panel |",
		"| Up/Down | Move selection |",
		"| Enter | Open snippet |",
		"| / | Search snippets |",
		"| f | Toggle favorite |",
		"| c | Copy code |",
		"| r | Run snippet (Python) |",
		"| e | Export snippet |",
		"| w | Start warmup quiz |",
		"| t | Toggle dark mode |",
		"| + / - | Adjust font size |",
		"| s | Stats |",
		"| F2 | Favorites |",
		"| F3 | History |",
		"| Ctrl+Q | Quit |",
	}, "\n")
	if r.markdown != nil {
		if rendered, err := r.markdown.Render(md); err == nil {
			return ansi.Strip(strings.TrimSpace(rendered))
		}
	}
	return md
}

func (r *Root) headerText() string {
	width := max(1, r.cols-1)
	parts := []string{"Code Aid"}
	sel := strings.Trim(strings.TrimSpace(r.browse.Language)+"/"+strings.TrimSpace(r.browse.Topic), "/")
	if r.screen == ScreenWarmup {
		sel = strings.Trim(strings.TrimSpace(r.warmup.Language)+"/"+strings.TrimSpace(r.warmup.Topic), "/")
		parts = append(parts, "Warmup")
	}
	if sel != "" {
		parts = append(parts, sel)
	}
	if r.darkMode {
		parts = append(parts, "dark")
	} else {
		parts = append(parts, "light")
	}
	txt := strings.Join(parts, " | ")
	if len([]rune(txt)) > width && sel != "" {
		short := trimForWidth(sel, max(8, width/3))
		txt = strings.Join([]string{"Code Aid", short}, " | ")
	}
	txt = trimForWidth(txt, width)
	if r.debug {
		txt = fmt.Sprintf("%s | %dx%d %v", txt, r.cols, r.rows, r.layout)
		txt = trimForWidth(txt, width)
	}
	return r.theme.Header.Width(max(1, r.cols)).Render(txt)
}

func (r *Root) statusText() string {
	keys := r.help.View(r.keymap)
	if keys == "" {
		keys = "/ Search  f Favorite  c Copy  r Run  e Export  w Warmup  F2 Favorites  F3 History  Ctrl+Q Quit"
	}
	if r.runInFlight {
		keys += " | " + r.theme.Accent.Render(strings.TrimSpace(r.runSpin.View())+" Running...")
	}
	if r.statusFlash != "" {
		keys += " | " + r.statusFlash
	}
	keys = trimForWidth(keys, max(1, r.cols-1))
	return r.theme.Status.Width(max(1, r.cols)).Render(keys)
}

func (r *Root) overlayCopyText() string {
	switch r.topOverlay() {
	case "run_output":
		return strings.TrimSpace(r.runOutput.Output)
	case "info":
		title := strings.TrimSpace(r.infoTitle)
		text := strings.TrimSpace(r.infoText)
		if title == "" {
			return text
		}
		if text == "" {
			return title
		}
		return title + "\n\n" + text
	case "favorites":
		var b strings.Builder
		for _, row := range r.favoriteRows {
			b.WriteString(fmt.Sprintf("%s / %s / %s\n", row.Language, row.Topic, row.Title))
		}
		return strings.TrimSpace(b.String())
	case "history":
		var b strings.Builder
		for _, row := range r.historyRows {
			b.WriteString(fmt.Sprintf("%s / %s / %s\n", row.Language, row.Topic, row.Title))
		}
		return strings.TrimSpace(b.String())
	}
	return ""
}

func (r *Root) syncCatalogSelection() {
	if len(r.catalog) == 0 {
		r.languageIndex = 0
		r.topicIndex = 0
		return
	}
	lidx := 0
	if r.browse.Language != "" {
		for i, lang := range r.catalog {
			if lang.Name == r.browse.Language {
				lidx = i
				break
			}
		}
	}
	r.languageIndex = lidx
	topics := r.catalog[lidx].Topics
	if len(topics) == 0 {
		r.topicIndex = 0
		return
	}
	tidx := 0
	if r.browse.Topic != "" {
		for i, t := range topics {
			if t == r.browse.Topic {
				tidx = i
				break
			}
		}
	}
	r.topicIndex = tidx
}

func (r *Root) topOverlay() string {
	switch {
	case r.infoOpen:
		return "info"
	case r.runOutput.Visible:
		return "run_output"
	case r.warmupResult.Visible:
		return "warmup_result"
	case r.welcomeOpen:
		return "welcome"
	case r.helpOpen:
		return "help"
	case r.historyOpen:
		return "history"
	case r.favoritesOpen:
		return "favorites"
	}
	return ""
}

func (r *Root) overlayActive() bool {
	return r.topOverlay() != ""
}

func (r *Root) drawPanel(title string, lines []string, width, height int) string {
	width = max(4, width)
	height = max(3, height)
	innerW := width - 2
	innerH := height - 2

	h := "─"
	v := "│"
	tl := "┌"
	tr := "┐"
	bl := "└"
	br := "┘"
	if r.ascii {
		h = "-"
		v = "|"
		tl, tr, bl, br = "+", "+", "+", "+"
	}

	top := tl + strings.Repeat(h, innerW) + tr
	if title != "" && innerW > 2 {
		t := " " + title + " "
		runes := []rune(top)
		start := 1
		for i, ch := range []rune(t) {
			pos := start + i
			if pos >= len(runes)-1 {
				break
			}
			runes[pos] = ch
		}
		top = string(runes)
	}

	out := make([]string, 0, height)
	out = append(out, r.theme.PanelBorder.Render(top))
	for row := 0; row < innerH; row++ {
		line := ""
		if row < len(lines) {
			line = lines[row]
		}
		line = padRune(line, innerW)
		out = append(out, r.theme.PanelBorder.Render(v)+r.theme.PanelBody.Render(line)+r.theme.PanelBorder.Render(v))
	}
	out = append(out, r.theme.PanelBorder.Render(bl+strings.Repeat(h, innerW)+br))
	return strings.Join(out, "\n")
}

func (r *Root) animateIfNeeded() tea.Cmd {
	target := 0.0
	if r.warmupResult.Visible {
		target = 1.0
	}
	if r.shouldAnimate(target) {
		return animateTickCmd()
	}
	return nil
}

func (r *Root) shouldAnimate(target float64) bool {
	if r.motionLevel == "off" {
		return false
	}
	if target > 0 {
		return r.overlayPos < 0.999 || abs(r.overlayVel) > 0.001
	}
	return r.overlayPos > 0.001 || abs(r.overlayVel) > 0.001
}

func clockTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func animateTickCmd() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return animateMsg(t) })
}

func spinnerTickCmd(model spinner.Model) tea.Cmd {
	return func() tea.Msg {
		return model.Tick()
	}
}

func firstNonEmptyStr(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		i = n - 1
	}
	if i >= n {
		i = 0
	}
	return i
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func padRune(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(s, "\t", "    "))
	if len(r) > width {
		r = r[:width]
	}
	if len(r) < width {
		r = append(r, []rune(strings.Repeat(" ", width-len(r)))...)
	}
	return string(r)
}

func composeOverlay(base, overlay string, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return base
	}
	base = ansi.Strip(base)
	overlay = ansi.Strip(overlay)
	baseLines := strings.Split(base, "\n")
	if len(baseLines) < rows {
		pad := make([]string, rows-len(baseLines))
		baseLines = append(baseLines, pad...)
	}
	for i := 0; i < rows; i++ {
		baseLines[i] = padRune(baseLines[i], cols)
	}

	overlayLines := strings.Split(strings.TrimRight(overlay, "\n"), "\n")
	if len(overlayLines) == 0 {
		return strings.Join(baseLines[:rows], "\n")
	}
	ow := 1
	for _, line := range overlayLines {
		lw := len([]rune(line))
		if lw > ow {
			ow = lw
		}
	}
	if ow > cols {
		ow = cols
	}
	oh := len(overlayLines)
	if oh > rows {
		oh = rows
	}
	startRow := (rows - oh) / 2
	startCol := (cols - ow) / 2
	if startCol < 0 {
		startCol = 0
	}

	for i := 0; i < oh; i++ {
		row := startRow + i
		if row < 0 || row >= rows {
			continue
		}
		dst := []rune(baseLines[row])
		src := []rune(overlayLines[i])
		if len(src) > ow {
			src = src[:ow]
		}
		for j := 0; j < ow && startCol+j < len(dst); j++ {
			dst[startCol+j] = ' '
		}
		for j := 0; j < len(src) && startCol+j < len(dst); j++ {
			dst[startCol+j] = src[j]
		}
		baseLines[row] = string(dst)
	}
	return strings.Join(baseLines[:rows], "\n")
}

func trimForWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(ansi.Strip(s), "\n", " "))
	if len(r) <= width {
		return string(r)
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

func (r *Root) currentMouseMode() tea.MouseMode {
	switch r.mouseScope {
	case "off":
		return tea.MouseModeNone
	case "full":
		return tea.MouseModeCellMotion
	default:
		if r.screen == ScreenWarmup && !r.overlayActive() {
			return tea.MouseModeNone
		}
		return tea.MouseModeCellMotion
	}
}

func normalizeMotionLevel(v string) string {
	switch strings.TrimSpace(v) {
	case "off", "reduced", "full":
		return strings.TrimSpace(v)
	default:
		return "full"
	}
}

func normalizeMouseScope(v string) string {
	switch strings.TrimSpace(v) {
	case "off", "scoped", "full":
		return strings.TrimSpace(v)
	default:
		return "scoped"
	}
}

const defaultFontSize = 14

func normalizeFontSize(size int) int {
	if size == 0 {
		return defaultFontSize
	}
	return clamp(size, 8, 32)
}

// markdownWrap maps the font size preference onto the glamour wrap width.
func markdownWrap(fontSize int) int {
	return clamp(78+2*(fontSize-defaultFontSize), 48, 100)
}

func (r *Root) recordInputEvent(event string) {
	r.lastInputEvent = trimForWidth(strings.TrimSpace(event), 160)
}

func (r *Root) onModelPanic(where string, recovered any, msg tea.Msg) {
	if r.statusFlash == "" {
		r.flash("Recovered UI panic")
	}

	message := fmt.Sprintf("%v", recovered)
	msgType := ""
	if msg != nil {
		msgType = fmt.Sprintf("%T", msg)
	}
	r.logger.Error("ui.panic_recovered", map[string]any{
		"where":       where,
		"panic":       message,
		"messageType": msgType,
		"screen":      r.screen,
		"layout":      r.layout,
		"cols":        r.cols,
		"rows":        r.rows,
		"overlay":     r.topOverlay(),
		"last_input":  r.lastInputEvent,
		"stack":       string(debug.Stack()),
	})
}

var _ tea.Model = (*Root)(nil)
var _ View = (*Root)(nil)
