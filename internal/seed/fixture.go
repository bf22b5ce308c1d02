// Package seed loads a YAML catalog fixture through the content service, so seeded
// statuses pass the same publication gate as editor requests.
package seed

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

type Fixture struct {
	Topics   []string         `yaml:"topics"`
	Programs []ProgramFixture `yaml:"programs"`
}

type AssetFixture struct {
	Language string `yaml:"language"`
	Variant  string `yaml:"variant"`
	URL      string `yaml:"url"`
}

type ProgramFixture struct {
	Title              string         `yaml:"title"`
	Description        string         `yaml:"description"`
	LanguagePrimary    string         `yaml:"languagePrimary"`
	LanguagesAvailable []string       `yaml:"languagesAvailable"`
	Topics             []string       `yaml:"topics"`
	Posters            []AssetFixture `yaml:"posters"`
	Status             string         `yaml:"status"`
	Terms              []TermFixture  `yaml:"terms"`
}

type TermFixture struct {
	Number      int             `yaml:"number"`
	Title       string          `yaml:"title"`
	Description string          `yaml:"description"`
	Lessons     []LessonFixture `yaml:"lessons"`
}

type LessonFixture struct {
	Number                    int               `yaml:"number"`
	Title                     string            `yaml:"title"`
	Description               string            `yaml:"description"`
	ContentType               string            `yaml:"contentType"`
	DurationMs                *int64            `yaml:"durationMs"`
	IsPaid                    bool              `yaml:"isPaid"`
	ContentLanguagePrimary    string            `yaml:"contentLanguagePrimary"`
	ContentLanguagesAvailable []string          `yaml:"contentLanguagesAvailable"`
	ContentURLsByLanguage     map[string]string `yaml:"contentUrlsByLanguage"`
	SubtitleLanguages         []string          `yaml:"subtitleLanguages"`
	SubtitleURLsByLanguage    map[string]string `yaml:"subtitleUrlsByLanguage"`
	Thumbnails                []AssetFixture    `yaml:"thumbnails"`
	Status                    string            `yaml:"status"`
	PublishAt                 *time.Time        `yaml:"publishAt"`
}

// Load decodes a fixture, rejecting unknown keys.
func Load(r io.Reader) (Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	return fx, nil
}
