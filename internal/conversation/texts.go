package conversation

import "github.com/bibliobot/bibliobot-server/internal/domain"

// Texts holds the user-facing strings of one interface language.
type Texts struct {
	Welcome        string
	ChooseLanguage string

	SearchAny      string
	SearchTitle    string
	SearchAuthor   string
	ChangeLanguage string
	MainMenu       string
	NewSearch      string
	Prev           string
	Next           string
	BackToResults  string

	PromptAny     string
	PromptTitle   string
	PromptAuthor  string
	QueryTooShort string
	NoResults     string // %s is the query
	Unavailable   string
	SelectHint    string

	EditionsCount  string
	EditionsHeader string // %d is the total
	Storage        string
	NoEditions     string
	Publication    string
	Language       string
	Location       string
	Shelf          string
	Copies         string

	ModeLines map[domain.SearchMode]string
}

//nolint:gochecknoglobals // Static message catalog
var catalogTexts = map[domain.Language]*Texts{
	domain.LanguageRU: {
		Welcome:        "Добро пожаловать в электронный каталог библиотеки. Выберите действие:",
		ChooseLanguage: "Выберите язык / Тілді таңдаңыз:",

		SearchAny:      "🔍 Поиск по каталогу",
		SearchTitle:    "📖 По названию",
		SearchAuthor:   "👤 По автору",
		ChangeLanguage: "🌐 Сменить язык",
		MainMenu:       "🏠 Главное меню",
		NewSearch:      "🔍 Новый поиск",
		Prev:           "⬅️ Назад",
		Next:           "Вперёд ➡️",
		BackToResults:  "↩️ К результатам",

		PromptAny:     "Введите название книги или фамилию автора:",
		PromptTitle:   "Введите название книги:",
		PromptAuthor:  "Введите фамилию автора:",
		QueryTooShort: "Запрос должен содержать не менее 3 символов. Попробуйте ещё раз:",
		NoResults:     "По запросу «%s» ничего не найдено.",
		Unavailable:   "Каталог временно недоступен. Попробуйте позже.",
		SelectHint:    "Выберите книгу кнопкой или отправьте её номер.",

		EditionsCount:  "Издания",
		EditionsHeader: "Издания (всего: %d):",
		Storage:        "Места хранения",
		NoEditions:     "Издания не найдены.",
		Publication:    "Издание",
		Language:       "Язык",
		Location:       "Расположение",
		Shelf:          "Шифр",
		Copies:         "Экз.",

		ModeLines: map[domain.SearchMode]string{
			domain.ModeAny:    "Режим: везде",
			domain.ModeTitle:  "Режим: по названию",
			domain.ModeAuthor: "Режим: по автору",
		},
	},
	domain.LanguageKZ: {
		Welcome:        "Кітапхананың электрондық каталогына қош келдіңіз. Әрекетті таңдаңыз:",
		ChooseLanguage: "Выберите язык / Тілді таңдаңыз:",

		SearchAny:      "🔍 Каталогтан іздеу",
		SearchTitle:    "📖 Атауы бойынша",
		SearchAuthor:   "👤 Автор бойынша",
		ChangeLanguage: "🌐 Тілді ауыстыру",
		MainMenu:       "🏠 Басты мәзір",
		NewSearch:      "🔍 Жаңа іздеу",
		Prev:           "⬅️ Артқа",
		Next:           "Алға ➡️",
		BackToResults:  "↩️ Нәтижелерге",

		PromptAny:     "Кітаптың атауын немесе автордың тегін енгізіңіз:",
		PromptTitle:   "Кітаптың атауын енгізіңіз:",
		PromptAuthor:  "Автордың тегін енгізіңіз:",
		QueryTooShort: "Сұраныс кемінде 3 таңбадан тұруы керек. Қайталап көріңіз:",
		NoResults:     "«%s» сұранысы бойынша ештеңе табылмады.",
		Unavailable:   "Каталог уақытша қолжетімсіз. Кейінірек қайталап көріңіз.",
		SelectHint:    "Кітапты батырмамен таңдаңыз немесе нөмірін жіберіңіз.",

		EditionsCount:  "Басылымдар",
		EditionsHeader: "Басылымдар (барлығы: %d):",
		Storage:        "Сақтау орындары",
		NoEditions:     "Басылымдар табылмады.",
		Publication:    "Басылым",
		Language:       "Тілі",
		Location:       "Орналасуы",
		Shelf:          "Шифр",
		Copies:         "Дана",

		ModeLines: map[domain.SearchMode]string{
			domain.ModeAny:    "Режим: барлық жерде",
			domain.ModeTitle:  "Режим: атауы бойынша",
			domain.ModeAuthor: "Режим: автор бойынша",
		},
	},
}

// TextsFor returns the strings of lang, falling back to Russian.
func TextsFor(lang domain.Language) *Texts {
	if t, ok := catalogTexts[lang]; ok {
		return t
	}
	return catalogTexts[domain.LanguageRU]
}

// prompt returns the query prompt for mode.
func (t *Texts) prompt(mode domain.SearchMode) string {
	switch mode {
	case domain.ModeTitle:
		return t.PromptTitle
	case domain.ModeAuthor:
		return t.PromptAuthor
	default:
		return t.PromptAny
	}
}
