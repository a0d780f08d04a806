package normalize

import (
	"crypto/md5" //nolint:gosec // Test mirrors the production key
	"encoding/hex"
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Case folding
		{"Война и Мир", "война и мир"},
		{"WAR AND PEACE", "war and peace"},
		{"Қазақ ӘДЕБИЕТІ", "қазақ әдебиеті"},
		// ё folding, both cases
		{"Ёжик в тумане", "ежик в тумане"},
		{"Идём", "идем"},
		// Punctuation and whitespace
		{"  Абай   Құнанбайұлы!!! ", "абай құнанбайұлы"},
		{"Толстой, Л.Н.", "толстой л н"},
		{"C++ Programming", "c programming"},
		{"Tom_Sawyer", "tom_sawyer"},
		{"line\tbreak\nhere", "line break here"},
		{"!!!", ""},
		// Noise words are whole tokens only
		{"Издание 2-е, изд.", "2 е"},
		{"Oxford Publishing", "oxford"},
		{"Publ. house", "house"},
		{"Атамұра баспасы", "атамұра"},
		{"Издательство Наука", "издательство наука"},
		{"publishers", "publishers"},
		// Edge cases
		{"", ""},
		{"   ", ""},
		{"изд", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := Text(tt.input)
			if result != tt.expected {
				t.Errorf("Text(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestText_Idempotent(t *testing.T) {
	inputs := []string{
		"Война и Мир",
		"Ёлки-палки, изд. 3",
		"  Абай   Құнанбайұлы!!! ",
		"Издание издание изд",
		"Harry Potter & the Philosopher's Stone",
	}

	for _, in := range inputs {
		once := Text(in)
		if twice := Text(once); twice != once {
			t.Errorf("Text not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("Война, и МИР")
	want := []string{"война", "и", "мир"}
	if len(got) != len(want) {
		t.Fatalf("Tokens() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tokens()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := Tokens("!!"); len(got) != 0 {
		t.Errorf("Tokens(%q) = %v, want empty", "!!", got)
	}
}

func TestFoldLetters(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Ёлка", "Елка"},
		{"Идём дальше, Пётр!", "Идем дальше, Петр!"},
		{"Қазақ әдебиеті", "Қазақ әдебиеті"},
	}
	for _, tt := range tests {
		if got := FoldLetters(tt.in); got != tt.want {
			t.Errorf("FoldLetters(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if Text(FoldLetters(tt.in)) != Text(tt.in) {
			t.Errorf("Text differs after FoldLetters(%q)", tt.in)
		}
	}
}

func TestWorkKey(t *testing.T) {
	base := WorkKey("Толстой Л.Н.", "Война и мир")

	t.Run("equivalent spellings share a key", func(t *testing.T) {
		variants := [][2]string{
			{"толстой л н", "ВОЙНА И МИР!"},
			{"  Толстой,  Л. Н. ", "Война и мир. Издание"},
		}
		for _, v := range variants {
			if got := WorkKey(v[0], v[1]); got != base {
				t.Errorf("WorkKey(%q, %q) = %s, want %s", v[0], v[1], got, base)
			}
		}
	})

	t.Run("order sensitive", func(t *testing.T) {
		if WorkKey("Война и мир", "Толстой Л.Н.") == base {
			t.Error("swapping author and title produced the same key")
		}
	})

	t.Run("hex md5 of joined normalized fields", func(t *testing.T) {
		sum := md5.Sum([]byte("толстой л н|война и мир")) //nolint:gosec // See import
		if want := hex.EncodeToString(sum[:]); base != want {
			t.Errorf("WorkKey = %s, want %s", base, want)
		}
		if len(base) != 32 {
			t.Errorf("len(WorkKey) = %d, want 32", len(base))
		}
	})

	t.Run("empty fields collapse to one key", func(t *testing.T) {
		sum := md5.Sum([]byte("|")) //nolint:gosec // See import
		want := hex.EncodeToString(sum[:])
		if got := WorkKey("", ""); got != want {
			t.Errorf("WorkKey(\"\", \"\") = %s, want %s", got, want)
		}
		if got := WorkKey("!!!", "изд"); got != want {
			t.Errorf("WorkKey of noise-only fields = %s, want %s", got, want)
		}
	})
}

func TestLanguageLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"503", "Русский"},
		{"501", "Казахский"},
		{"504", "Английский"},
		{"521", "Арабский (религиозные тексты)"},
		{" 503 ", "Русский"},
		// Unknown codes pass through
		{"999", "999"},
		{"fre", "fre"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := LanguageLabel(tt.input); result != tt.expected {
				t.Errorf("LanguageLabel(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
