package ui

type Controller interface {
	OnSelectLanguage(name string)
	OnSelectTopic(name string)
	OnSelectSnippet(index int)
	OnSearch(query string)
	OnToggleFavorite(index int)
	OnShowFavorites()
	OnOpenFavorite(key string)
	OnShowHistory()
	OnRunSnippet(index int)
	OnExportSnippet(index int)
	OnStartWarmup()
	OnAnswerQuestion(option int)
	OnNextQuestion()
	OnPrevQuestion()
	OnFinishWarmup()
	OnResetWarmup()
	OnOpenStats()
	OnAdjustFontSize(delta int)
	OnToggleDarkMode()
	OnDismissWelcome()
	OnQuit()
	OnResize(cols, rows int)
}

type View interface {
	Run() error
	Stop()
	SetController(Controller)
	SetScreen(screen Screen)
	SetCatalog(languages []LanguageSummary)
	SetSelection(language, topic string)
	SetBrowseState(BrowseState)
	SetFavorites(rows []FavoriteRow, open bool)
	SetHistory(rows []HistoryRow, open bool)
	SetWarmupState(WarmupState)
	SetWarmupResult(WarmupResult)
	SetRunOutput(RunOutputState)
	SetInfo(title, text string, open bool)
	SetWelcomeOpen(open bool)
	SetRunning(running bool)
	SetDarkMode(dark bool)
	SetFontSize(size int)
	FlashStatus(msg string)
}

type Screen int

const (
	ScreenBrowse Screen = iota
	ScreenWarmup
)

type LayoutMode int

const (
	LayoutWide LayoutMode = iota
	LayoutMedium
	LayoutTooSmall
)

type LanguageSummary struct {
	Name   string
	Topics []string
}

type SnippetRow struct {
	// Index is the snippet's position in its topic, not in the filtered list.
	Index    int
	Title    string
	Favorite bool
}

type SnippetDetail struct {
	Title       string
	Code        string
	Explanation string
	UseCase     string
	Complexity  string
	Tags        []string
}

type BrowseState struct {
	Language string
	Topic    string
	Query    string
	Rows     []SnippetRow
	Detail   SnippetDetail
	// HasDetail distinguishes an empty topic from the zero detail value.
	HasDetail bool
}

type FavoriteRow struct {
	Key      string
	Language string
	Topic    string
	Title    string
}

type HistoryRow struct {
	Language string
	Topic    string
	Title    string
}

type WarmupState struct {
	Language     string
	Topic        string
	Index        int
	Total        int
	Score        int
	Prompt       string
	Options      []string
	Answered     bool
	Chosen       int
	CorrectIndex int
}

type WarmupResult struct {
	Visible bool
	Score   int
	Total   int
	Tier    string
	Message string
}

type RunOutputState struct {
	Visible    bool
	Title      string
	Output     string
	ExitCode   int
	TimedOut   bool
	DurationMS int64
}
