package devtools

import (
	"codeaid/internal/content"
	"codeaid/internal/ui"
)

// Scenario pins the view into one named state so screens can be reviewed
// or captured without a real catalog or database behind them.
type Scenario struct {
	Name       string
	Screen     ui.Screen
	Welcome    bool
	Favorites  bool
	History    bool
	RunOutput  bool
	Stats      bool
	ResultPass *bool
}

type Manager struct{}

func NewManager() *Manager { return &Manager{} }

func (m *Manager) Resolve(name string) Scenario {
	pass := true
	fail := false
	switch name {
	case "browse":
		return Scenario{Name: name}
	case "welcome":
		return Scenario{Name: name, Welcome: true}
	case "favorites":
		return Scenario{Name: name, Favorites: true}
	case "history":
		return Scenario{Name: name, History: true}
	case "warmup":
		return Scenario{Name: name, Screen: ui.ScreenWarmup}
	case "result_pass":
		return Scenario{Name: name, ResultPass: &pass}
	case "result_retry":
		return Scenario{Name: name, ResultPass: &fail}
	case "run_output":
		return Scenario{Name: name, RunOutput: true}
	case "stats":
		return Scenario{Name: name, Stats: true}
	default:
		return Scenario{Name: "browse"}
	}
}

// DemoCatalog is the canned content every scenario renders against.
func DemoCatalog() *content.Store {
	return content.NewStore([]content.LanguageFile{
		{
			Name: "Python",
			Topics: []content.Topic{
				{
					Name: "Основы Python",
					Snippets: []content.Snippet{
						{
							Title:       "Hello World",
							Code:        "print('Привет, мир!')",
							Explanation: "Простейшая программа: вывод строки на экран.",
							UseCase:     "Первое знакомство с языком.",
							Complexity:  "O(1)",
							Tags:        []string{"базовый", "вывод"},
						},
						{
							Title:       "Циклы for",
							Code:        "for i in range(5):\n    print(i)",
							Explanation: "Перебор последовательности чисел.",
							UseCase:     "Обработка элементов коллекции.",
							Complexity:  "O(n)",
							Tags:        []string{"циклы"},
						},
					},
					Questions: []content.Question{
						{Prompt: "Что выведет print(2 ** 3)?", Options: []string{"8", "6", "9"}, Correct: 0},
						{Prompt: "Какой тип у range(5)?", Options: []string{"list", "range", "tuple"}, Correct: 1},
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
						{Title: "Класс и метод", Code: "class Main {\n    public static void main(String[] args) {}\n}"},
					},
				},
			},
		},
	})
}

// Apply pushes the scenario's state into the view. Safe before Run: the
// view falls back to direct application when the program is not running.
func (m *Manager) Apply(v ui.View, sc Scenario) {
	catalog := DemoCatalog()

	langs := catalog.Languages()
	summaries := make([]ui.LanguageSummary, 0, len(langs))
	for _, lang := range langs {
		summaries = append(summaries, ui.LanguageSummary{Name: lang, Topics: catalog.Topics(lang)})
	}
	v.SetCatalog(summaries)

	snippets := catalog.Snippets("Python", "Основы Python")
	rows := make([]ui.SnippetRow, 0, len(snippets))
	for i, s := range snippets {
		rows = append(rows, ui.SnippetRow{Index: i, Title: s.Title, Favorite: i == 0})
	}
	first := snippets[0]
	v.SetSelection("Python", "Основы Python")
	v.SetBrowseState(ui.BrowseState{
		Language: "Python",
		Topic:    "Основы Python",
		Rows:     rows,
		Detail: ui.SnippetDetail{
			Title:       first.Title,
			Code:        first.Code,
			Explanation: first.Explanation,
			UseCase:     first.UseCase,
			Complexity:  first.Complexity,
			Tags:        first.Tags,
		},
		HasDetail: true,
	})
	v.SetScreen(sc.Screen)

	switch {
	case sc.Welcome:
		v.SetWelcomeOpen(true)
	case sc.Favorites:
		v.SetFavorites([]ui.FavoriteRow{
			{Key: "Python|Основы Python|0", Language: "Python", Topic: "Основы Python", Title: "Hello World"},
		}, true)
	case sc.History:
		v.SetHistory([]ui.HistoryRow{
			{Language: "Python", Topic: "Основы Python", Title: "Циклы for"},
			{Language: "Java", Topic: "Основы Java", Title: "Класс и метод"},
		}, true)
	case sc.RunOutput:
		v.SetRunOutput(ui.RunOutputState{
			Visible:    true,
			Title:      "Run: Hello World",
			Output:     "Привет, мир!\n",
			ExitCode:   0,
			DurationMS: 84,
		})
	case sc.Stats:
		v.SetInfo("Stats", "Topics attempted: 2\nWarmup attempts: 5\nBest scores combined: 5 of 6", true)
	case sc.ResultPass != nil:
		res := ui.WarmupResult{Visible: true, Score: 1, Total: 2, Tier: "retry", Message: "Worth revisiting this topic before the next try."}
		if *sc.ResultPass {
			res = ui.WarmupResult{Visible: true, Score: 2, Total: 2, Tier: "perfect", Message: "Perfect score. Keep it up."}
		}
		v.SetWarmupResult(res)
	}

	if sc.Screen == ui.ScreenWarmup {
		q := catalog.Questions("Python", "Основы Python")[0]
		v.SetWarmupState(ui.WarmupState{
			Language: "Python",
			Topic:    "Основы Python",
			Index:    0,
			Total:    2,
			Prompt:   q.Prompt,
			Options:  q.Options,
		})
	}
}

// RunDemo opens the UI on the named scenario and blocks until quit.
func RunDemo(name string, opts ui.Options) error {
	m := NewManager()
	v := ui.New(opts)
	v.SetController(&demoController{view: v})
	m.Apply(v, m.Resolve(name))
	return v.Run()
}

// demoController only honors quit; every other interaction is inert.
type demoController struct {
	view ui.View
}

func (c *demoController) OnSelectLanguage(string) {}
func (c *demoController) OnSelectTopic(string)    {}
func (c *demoController) OnSelectSnippet(int)     {}
func (c *demoController) OnSearch(string)         {}
func (c *demoController) OnToggleFavorite(int)    {}
func (c *demoController) OnShowFavorites()        {}
func (c *demoController) OnOpenFavorite(string)   {}
func (c *demoController) OnShowHistory()          {}
func (c *demoController) OnRunSnippet(int)        {}
func (c *demoController) OnExportSnippet(int)     {}
func (c *demoController) OnStartWarmup()          {}
func (c *demoController) OnAnswerQuestion(int)    {}
func (c *demoController) OnNextQuestion()         {}
func (c *demoController) OnPrevQuestion()         {}
func (c *demoController) OnFinishWarmup()         {}
func (c *demoController) OnResetWarmup()          {}
func (c *demoController) OnOpenStats()            {}
func (c *demoController) OnAdjustFontSize(int)    {}
func (c *demoController) OnToggleDarkMode()       {}
func (c *demoController) OnDismissWelcome()       {}
func (c *demoController) OnQuit()                 { c.view.Stop() }
func (c *demoController) OnResize(int, int)       {}
