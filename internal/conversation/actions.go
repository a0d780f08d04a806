package conversation

import (
	"strconv"
	"strings"

	"github.com/bibliobot/bibliobot-server/internal/domain"
)

// Action payloads carried by reply buttons.
const (
	ActionMainMenu     = "menu:main"
	ActionLanguageMenu = "menu:lang"
	actionModePrefix   = "mode:"
	actionLangPrefix   = "lang:"
	actionPagePrefix   = "search_page:"
	actionWorkPrefix   = "view_work:"
)

type actionKind int

const (
	actionUnknown actionKind = iota
	actionMainMenu
	actionLanguageMenu
	actionSetLanguage
	actionSelectMode
	actionSearchPage
	actionViewWork
)

// action is a decoded button payload.
type action struct {
	kind     actionKind
	mode     domain.SearchMode
	language domain.Language
	query    string
	workKey  string
	offset   int
}

// ModeAction returns the payload that starts a search in mode.
func ModeAction(mode domain.SearchMode) string {
	return actionModePrefix + string(mode)
}

// LanguageAction returns the payload that switches the interface language.
func LanguageAction(lang domain.Language) string {
	return actionLangPrefix + string(lang)
}

// SearchPageAction returns the payload that shows a results page. The query
// goes last so it may contain the separator.
func SearchPageAction(mode domain.SearchMode, offset int, query string) string {
	return actionPagePrefix + string(mode) + ":" + strconv.Itoa(offset) + ":" + query
}

// WorkAction returns the payload that shows a page of a work's editions.
func WorkAction(workKey string, offset int) string {
	return actionWorkPrefix + workKey + ":" + strconv.Itoa(offset)
}

// parseAction decodes a button payload. Malformed payloads decode as
// actionUnknown.
func parseAction(payload string) action {
	switch {
	case payload == ActionMainMenu, payload == "/start":
		return action{kind: actionMainMenu}

	case payload == ActionLanguageMenu:
		return action{kind: actionLanguageMenu}

	case strings.HasPrefix(payload, actionLangPrefix):
		lang := domain.Language(strings.TrimPrefix(payload, actionLangPrefix))
		if lang != domain.LanguageRU && lang != domain.LanguageKZ {
			return action{}
		}
		return action{kind: actionSetLanguage, language: lang}

	case strings.HasPrefix(payload, actionModePrefix):
		mode := domain.SearchMode(strings.TrimPrefix(payload, actionModePrefix))
		if !mode.Valid() {
			return action{}
		}
		return action{kind: actionSelectMode, mode: mode}

	case strings.HasPrefix(payload, actionPagePrefix):
		parts := strings.SplitN(strings.TrimPrefix(payload, actionPagePrefix), ":", 3)
		if len(parts) != 3 || parts[2] == "" {
			return action{}
		}
		offset, err := strconv.Atoi(parts[1])
		if err != nil {
			return action{}
		}
		return action{
			kind:   actionSearchPage,
			mode:   domain.ParseSearchMode(parts[0]),
			offset: max(offset, 0),
			query:  parts[2],
		}

	case strings.HasPrefix(payload, actionWorkPrefix):
		rest := strings.TrimPrefix(payload, actionWorkPrefix)
		key, offsetStr, found := strings.Cut(rest, ":")
		if key == "" {
			return action{}
		}
		offset := 0
		if found {
			n, err := strconv.Atoi(offsetStr)
			if err != nil {
				return action{}
			}
			offset = max(n, 0)
		}
		return action{kind: actionViewWork, workKey: key, offset: offset}
	}

	return action{}
}
