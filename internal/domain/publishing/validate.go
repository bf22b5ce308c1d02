// Package publishing holds the gates an entity must pass before it can be marked PUBLISHED.
package publishing

import (
	"fmt"
	"strings"

	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
)

// Reason is the machine-readable code carried by a ValidationError.
type Reason string

const (
	ReasonMissingRequiredAssets Reason = "MISSING_REQUIRED_ASSETS"
	ReasonMissingContentURL     Reason = "MISSING_CONTENT_URL"
	ReasonInvalidTransition     Reason = "INVALID_TRANSITION"
	ReasonInvalidPublishAt      Reason = "INVALID_PUBLISH_AT"
	ReasonInvalidLanguages      Reason = "INVALID_LANGUAGES"
	ReasonUnknownTopic          Reason = "UNKNOWN_TOPIC"
)

// ValidationError is a user-correctable failure. Message names the missing requirement.
type ValidationError struct {
	Reason    Reason
	Message   string
	Language  catalog.LanguageCode
	AssetType catalog.AssetType
	Missing   []catalog.AssetVariant
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func Invalid(reason Reason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ValidateProgramPublishable requires a PORTRAIT and a LANDSCAPE poster tagged with exactly
// the program's primary language. Other languages never stand in.
func ValidateProgramPublishable(p *catalog.Program) error {
	if p == nil {
		return Invalid(ReasonMissingRequiredAssets, "program is missing")
	}
	return requireVariants(p.LanguagePrimary, catalog.AssetPoster, p.HasPoster)
}

// ValidateLessonPublishable requires a content URL for the primary language, then PORTRAIT and
// LANDSCAPE thumbnails for it. The URL check runs first.
func ValidateLessonPublishable(l *catalog.Lesson) error {
	if l == nil {
		return Invalid(ReasonMissingContentURL, "lesson is missing")
	}
	lang := l.ContentLanguagePrimary
	if !l.ContentURLs().Has(lang) {
		return &ValidationError{
			Reason:   ReasonMissingContentURL,
			Message:  fmt.Sprintf("missing content url for language %s", lang),
			Language: lang,
		}
	}
	return requireVariants(lang, catalog.AssetThumbnail, l.HasThumbnail)
}

func requireVariants(lang catalog.LanguageCode, assetType catalog.AssetType, has func(catalog.LanguageCode, catalog.AssetVariant) bool) error {
	var missing []catalog.AssetVariant
	for _, v := range catalog.RequiredVariants {
		if !has(lang, v) {
			missing = append(missing, v)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, v := range missing {
		names[i] = string(v)
	}
	return &ValidationError{
		Reason:    ReasonMissingRequiredAssets,
		Message:   fmt.Sprintf("missing %s %s for language %s", strings.Join(names, " and "), strings.ToLower(string(assetType)), lang),
		Language:  lang,
		AssetType: assetType,
		Missing:   missing,
	}
}
