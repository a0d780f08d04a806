package conversation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bibliobot/bibliobot-server/internal/domain"
)

//nolint:gochecknoglobals // Compiled once
var numberedEntry = regexp.MustCompile(`^(\d+)\.\s`)

// RecoverSearch rebuilds the remembered search from the text of a displayed
// results message, for when the session no longer holds it.
//
// It expects the results template: a first line "🔎 <query>", optionally a
// mode line, and numbered entries "<N>. ...". The offset is the first entry
// number minus one. Markdown bold markers and a trailing "(<mode>)" suffix
// added by chat formatting are tolerated. Anything else reports false.
func RecoverSearch(displayed string) (domain.RememberedSearch, bool) {
	lines := strings.Split(strings.ReplaceAll(displayed, "\r\n", "\n"), "\n")

	first := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			first = i
			break
		}
	}
	if first < 0 {
		return domain.RememberedSearch{}, false
	}

	head := strings.TrimSpace(lines[first])
	if !strings.HasPrefix(head, resultsMarker) {
		return domain.RememberedSearch{}, false
	}
	query := strings.TrimSpace(strings.TrimPrefix(head, resultsMarker))

	mode := domain.ModeAny
	if q, m, ok := cutModeSuffix(query); ok {
		query, mode = q, m
	}
	query = strings.TrimSpace(strings.Trim(query, "*"))
	if query == "" {
		return domain.RememberedSearch{}, false
	}

	offset := -1
	for _, line := range lines[first+1:] {
		line = strings.TrimSpace(line)
		if m, ok := modeFromLine(line); ok {
			mode = m
			continue
		}
		if match := numberedEntry.FindStringSubmatch(line); match != nil {
			n, err := strconv.Atoi(match[1])
			if err != nil || n < 1 {
				return domain.RememberedSearch{}, false
			}
			offset = n - 1
			break
		}
	}
	if offset < 0 {
		return domain.RememberedSearch{}, false
	}

	return domain.RememberedSearch{Query: query, Mode: mode, Offset: offset}, true
}

// modeFromLine matches a full mode line in any language.
func modeFromLine(line string) (domain.SearchMode, bool) {
	for _, t := range catalogTexts {
		for mode, label := range t.ModeLines {
			if line == label {
				return mode, true
			}
		}
	}
	return "", false
}

// cutModeSuffix strips a trailing " (<mode line>)" from a query line.
func cutModeSuffix(query string) (string, domain.SearchMode, bool) {
	if !strings.HasSuffix(query, ")") {
		return query, "", false
	}
	open := strings.LastIndex(query, " (")
	if open < 0 {
		return query, "", false
	}
	if mode, ok := modeFromLine(query[open+2 : len(query)-1]); ok {
		return query[:open], mode, true
	}
	return query, "", false
}
