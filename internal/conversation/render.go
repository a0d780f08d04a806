package conversation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bibliobot/bibliobot-server/internal/domain"
)

// resultsMarker starts the first line of every results message.
const resultsMarker = "🔎"

// maxButtonLabel is the longest work title shown on a button, in runes.
const maxButtonLabel = 40

// Button is one reply button.
type Button struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// Reply is a transport-neutral rendered message.
type Reply struct {
	MessageID string                   `json:"message_id"`
	Text      string                   `json:"text"`
	Buttons   [][]Button               `json:"buttons,omitempty"`
	State     domain.ConversationState `json:"state"`
}

func mainMenu(t *Texts) *Reply {
	return &Reply{
		Text: t.Welcome,
		Buttons: [][]Button{
			{{Label: t.SearchAny, Action: ModeAction(domain.ModeAny)}},
			{
				{Label: t.SearchTitle, Action: ModeAction(domain.ModeTitle)},
				{Label: t.SearchAuthor, Action: ModeAction(domain.ModeAuthor)},
			},
			{{Label: t.ChangeLanguage, Action: ActionLanguageMenu}},
		},
	}
}

func languageMenu(t *Texts) *Reply {
	return &Reply{
		Text: t.ChooseLanguage,
		Buttons: [][]Button{{
			{Label: "Русский", Action: LanguageAction(domain.LanguageRU)},
			{Label: "Қазақша", Action: LanguageAction(domain.LanguageKZ)},
		}},
	}
}

func menuRow(t *Texts) []Button {
	return []Button{{Label: t.MainMenu, Action: ActionMainMenu}}
}

func promptReply(t *Texts, text string) *Reply {
	return &Reply{Text: text, Buttons: [][]Button{menuRow(t)}}
}

// renderResults renders one page of works. The first line and the numbering
// are parsed back by RecoverSearch, so both must stay in this shape:
//
//	🔎 <query>
//	<mode line>
//
//	<N>. <title>
//	👤 <author>
//	📚 <editions>: <count>
func renderResults(t *Texts, search domain.RememberedSearch, works []domain.Work, pageSize int) *Reply {
	var b strings.Builder
	b.WriteString(resultsMarker + " " + search.Query + "\n")
	b.WriteString(t.ModeLines[search.Mode] + "\n\n")

	buttons := make([][]Button, 0, len(works)+2)
	for i, w := range works {
		n := search.Offset + i + 1
		fmt.Fprintf(&b, "%d. %s\n", n, w.Title)
		if w.Author != "" {
			fmt.Fprintf(&b, "👤 %s\n", w.Author)
		}
		fmt.Fprintf(&b, "📚 %s: %d\n\n", t.EditionsCount, w.EditionsCount)

		buttons = append(buttons, []Button{{
			Label:  truncate(strconv.Itoa(n)+". "+w.Title, maxButtonLabel),
			Action: WorkAction(w.Key, 0),
		}})
	}
	b.WriteString(t.SelectHint)

	var nav []Button
	if search.Offset > 0 {
		nav = append(nav, Button{
			Label:  t.Prev,
			Action: SearchPageAction(search.Mode, max(search.Offset-pageSize, 0), search.Query),
		})
	}
	if len(works) == pageSize {
		nav = append(nav, Button{
			Label:  t.Next,
			Action: SearchPageAction(search.Mode, search.Offset+pageSize, search.Query),
		})
	}
	if len(nav) > 0 {
		buttons = append(buttons, nav)
	}
	buttons = append(buttons, []Button{
		{Label: t.NewSearch, Action: ModeAction(search.Mode)},
		{Label: t.MainMenu, Action: ActionMainMenu},
	})

	return &Reply{Text: b.String(), Buttons: buttons}
}

func renderNoResults(t *Texts, search domain.RememberedSearch) *Reply {
	return &Reply{
		Text: fmt.Sprintf(t.NoResults, search.Query),
		Buttons: [][]Button{{
			{Label: t.NewSearch, Action: ModeAction(search.Mode)},
			{Label: t.MainMenu, Action: ActionMainMenu},
		}},
	}
}

// renderEditions renders one page of a work's editions. back is the list the
// user came from; nil omits the back button.
func renderEditions(t *Texts, workKey string, page domain.EditionPage, stats string, offset, pageSize int, back *domain.RememberedSearch) *Reply {
	var b strings.Builder

	if len(page.Editions) == 0 {
		b.WriteString(t.NoEditions)
	} else {
		first := page.Editions[0]
		fmt.Fprintf(&b, "📚 %s\n", first.Title)
		if first.Author != "" {
			fmt.Fprintf(&b, "👤 %s\n", first.Author)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, t.EditionsHeader+"\n", page.Total)
		if stats != "" {
			fmt.Fprintf(&b, "🏢 %s: %s\n", t.Storage, stats)
		}

		for i := range page.Editions {
			b.WriteString("\n")
			writeEditionCard(&b, t, offset+i+1, &page.Editions[i])
		}
	}

	var buttons [][]Button
	var nav []Button
	if offset > 0 {
		nav = append(nav, Button{Label: t.Prev, Action: WorkAction(workKey, max(offset-pageSize, 0))})
	}
	if offset+len(page.Editions) < page.Total {
		nav = append(nav, Button{Label: t.Next, Action: WorkAction(workKey, offset+pageSize)})
	}
	if len(nav) > 0 {
		buttons = append(buttons, nav)
	}

	last := make([]Button, 0, 2)
	if back != nil {
		last = append(last, Button{
			Label:  t.BackToResults,
			Action: SearchPageAction(back.Mode, back.Offset, back.Query),
		})
	}
	last = append(last, menuRow(t)...)
	buttons = append(buttons, last)

	return &Reply{Text: strings.TrimRight(b.String(), "\n"), Buttons: buttons}
}

// writeEditionCard writes one edition. Absent fields are skipped.
func writeEditionCard(b *strings.Builder, t *Texts, n int, e *domain.Edition) {
	title := e.Title
	if e.Volume != "" {
		title += ", " + e.Volume
	}
	fmt.Fprintf(b, "%d. 📖 %s\n", n, title)

	if !e.HasDetails() {
		fmt.Fprintf(b, "📄 #%d\n", e.ID)
		return
	}
	if e.Publication != "" {
		fmt.Fprintf(b, "📅 %s: %s\n", t.Publication, e.Publication)
	}
	if e.Language != "" {
		fmt.Fprintf(b, "🌐 %s: %s\n", t.Language, e.Language)
	}
	if len(e.Locations) > 0 {
		fmt.Fprintf(b, "📍 %s: %s\n", t.Location, strings.Join(e.Locations, ", "))
	}
	if e.IndexCatalogue != "" {
		fmt.Fprintf(b, "🔖 %s: %s\n", t.Shelf, e.IndexCatalogue)
	}
	if e.CopyCount != "" {
		fmt.Fprintf(b, "🔢 %s: %s\n", t.Copies, e.CopyCount)
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
