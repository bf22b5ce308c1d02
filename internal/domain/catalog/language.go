package catalog

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// LanguageCode is a lower-case ISO 639-1 code such as "en" or "te".
type LanguageCode string

func (c LanguageCode) String() string { return string(c) }

// ParseLanguage normalizes raw into a two-letter base language code.
// Region or script subtags ("en-US") are rejected rather than truncated.
func ParseLanguage(raw string) (LanguageCode, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) != 2 {
		return "", fmt.Errorf("language %q: want a two-letter ISO 639-1 code", raw)
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("language %q: %w", raw, err)
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", fmt.Errorf("language %q: unknown base language", raw)
	}
	code := strings.ToLower(base.String())
	if len(code) != 2 {
		return "", fmt.Errorf("language %q: no two-letter form", raw)
	}
	return LanguageCode(code), nil
}

// ParseLanguages parses every entry and drops duplicates, keeping first-seen order.
func ParseLanguages(raw []string) ([]LanguageCode, error) {
	out := make([]LanguageCode, 0, len(raw))
	seen := make(map[LanguageCode]struct{}, len(raw))
	for _, r := range raw {
		code, err := ParseLanguage(r)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out, nil
}

// LanguageSet is an ordered, duplicate-free list of language codes.
type LanguageSet []LanguageCode

func (s LanguageSet) Contains(code LanguageCode) bool {
	for _, c := range s {
		if c == code {
			return true
		}
	}
	return false
}

// WithPrimary returns s with primary prepended when it is missing.
func (s LanguageSet) WithPrimary(primary LanguageCode) LanguageSet {
	if primary == "" || s.Contains(primary) {
		return s
	}
	out := make(LanguageSet, 0, len(s)+1)
	out = append(out, primary)
	return append(out, s...)
}

// LanguageURLs maps a language code to the URL serving that language.
type LanguageURLs map[LanguageCode]string

func (m LanguageURLs) Has(code LanguageCode) bool {
	u, ok := m[code]
	return ok && strings.TrimSpace(u) != ""
}

// Languages returns the keys in sorted order.
func (m LanguageURLs) Languages() []LanguageCode {
	out := make([]LanguageCode, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// KeysWithin reports the first key of m that is not part of allowed.
func (m LanguageURLs) KeysWithin(allowed LanguageSet) (LanguageCode, bool) {
	for _, k := range m.Languages() {
		if !allowed.Contains(k) {
			return k, false
		}
	}
	return "", true
}

// ParseLanguageURLs validates every key of raw as a language code.
func ParseLanguageURLs(raw map[string]string) (LanguageURLs, error) {
	out := make(LanguageURLs, len(raw))
	for k, v := range raw {
		code, err := ParseLanguage(k)
		if err != nil {
			return nil, err
		}
		out[code] = strings.TrimSpace(v)
	}
	return out, nil
}
