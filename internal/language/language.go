package language

import (
	"sort"
	"strings"

	xlanguage "golang.org/x/text/language"
)

// DefaultLocale is used when a target language has no entry in the table.
const DefaultLocale = "tr-TR"

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string   // Human-readable name
	locale  string   // Speech synthesis locale
	words   []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"tr", "tur", "", "Turkish", "tr-TR", []string{"turkish", "türkçe", "turkce"}},
	{"en", "eng", "", "English", "en-US", []string{"english"}},
	{"es", "spa", "", "Spanish", "es-ES", []string{"spanish", "español", "espanol"}},
	{"fr", "fra", "fre", "French", "fr-FR", []string{"french", "français"}},
	{"de", "deu", "ger", "German", "de-DE", []string{"german", "deutsch"}},
	{"it", "ita", "", "Italian", "it-IT", []string{"italian"}},
	{"pt", "por", "", "Portuguese", "pt-BR", []string{"portuguese"}},
	{"ja", "jpn", "", "Japanese", "ja-JP", []string{"japanese"}},
	{"ko", "kor", "", "Korean", "ko-KR", []string{"korean"}},
	{"zh", "zho", "chi", "Chinese", "cmn-CN", []string{"chinese", "mandarin"}},
	{"ru", "rus", "", "Russian", "ru-RU", []string{"russian"}},
	{"ar", "ara", "", "Arabic", "ar-XA", []string{"arabic"}},
	{"hi", "hin", "", "Hindi", "hi-IN", []string{"hindi"}},
	{"nl", "nld", "dut", "Dutch", "nl-NL", []string{"dutch"}},
	{"pl", "pol", "", "Polish", "pl-PL", []string{"polish"}},
	{"sv", "swe", "", "Swedish", "sv-SE", []string{"swedish"}},
	{"da", "dan", "", "Danish", "da-DK", []string{"danish"}},
	{"no", "nor", "", "Norwegian", "nb-NO", []string{"norwegian"}},
	{"fi", "fin", "", "Finnish", "fi-FI", []string{"finnish"}},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages)*2)
	for i := range languages {
		e := &languages[i]
		if _, err := xlanguage.Parse(e.locale); err != nil {
			panic("language: invalid locale " + e.locale)
		}
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// Locale maps a language name or code to its synthesis locale. Inputs that
// are already region-qualified tags (e.g. "pt-PT") are returned in canonical
// form. Anything else falls back to fallback, or DefaultLocale when fallback
// is blank; the boolean reports whether the table matched.
func Locale(target, fallback string) (string, bool) {
	if e := lookup(target); e != nil {
		return e.locale, true
	}
	if tag, ok := regionTag(target); ok {
		return tag, true
	}
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		fallback = DefaultLocale
	}
	return fallback, false
}

func regionTag(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if !strings.ContainsAny(value, "-_") {
		return "", false
	}
	tag, err := xlanguage.Parse(value)
	if err != nil {
		return "", false
	}
	if _, conf := tag.Region(); conf != xlanguage.Exact {
		return "", false
	}
	return tag.String(), true
}

// ValidLocale reports whether value parses as a BCP 47 tag.
func ValidLocale(value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	_, err := xlanguage.Parse(value)
	return err == nil
}

// HumanName returns the name handed to the translator. Known codes and names
// resolve to the table's display name; anything else, region tags included,
// is passed through as typed.
func HumanName(value string) string {
	trimmed := strings.TrimSpace(value)
	if e := lookup(trimmed); e != nil {
		return e.display
	}
	return trimmed
}

// ExtractFromTags extracts and normalizes the language from stream metadata tags.
// Checks common tag keys: language, LANGUAGE, Language, language_ietf, lang, LANG.
func ExtractFromTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"}
	for _, key := range keys {
		if value, ok := tags[key]; ok {
			value = strings.TrimSpace(strings.ReplaceAll(value, "\u0000", ""))
			if value != "" {
				return strings.ToLower(value)
			}
		}
	}
	return ""
}

// Entry is the exported view of one table row.
type Entry struct {
	Name   string `json:"name"`
	Code2  string `json:"iso639_1"`
	Code3  string `json:"iso639_2"`
	Locale string `json:"locale"`
}

// Entries returns the locale table sorted by display name.
func Entries() []Entry {
	out := make([]Entry, 0, len(languages))
	for _, e := range languages {
		out = append(out, Entry{Name: e.display, Code2: e.code2, Code3: e.code3, Locale: e.locale})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
