package locales

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed translations/*.toml
var translationFS embed.FS

// ContextKey is the gin context key holding the negotiated language
const ContextKey = "lang"

var supported = []language.Tag{language.English, language.Russian}

var (
	bundleOnce sync.Once
	bundle     *i18n.Bundle
	bundleErr  error
	matcher    = language.NewMatcher(supported)

	defaultMu   sync.RWMutex
	defaultLang = language.English
)

// Init loads the embedded translation files. It is safe to call more than once.
func Init() error {
	bundleOnce.Do(func() {
		b := i18n.NewBundle(language.English)
		b.RegisterUnmarshalFunc("toml", toml.Unmarshal)

		entries, err := translationFS.ReadDir("translations")
		if err != nil {
			bundleErr = fmt.Errorf("failed to read translations: %w", err)
			return
		}
		for _, entry := range entries {
			if _, err := b.LoadMessageFileFS(translationFS, "translations/"+entry.Name()); err != nil {
				bundleErr = fmt.Errorf("failed to load %s: %w", entry.Name(), err)
				return
			}
		}
		bundle = b
	})
	return bundleErr
}

// SetDefaultLanguage sets the language used when the request does not ask for a supported one
func SetDefaultLanguage(lang string) {
	tag, _ := language.MatchStrings(matcher, lang)
	base, _ := tag.Base()
	defaultMu.Lock()
	defaultLang = language.Make(base.String())
	defaultMu.Unlock()
}

func getDefault() language.Tag {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLang
}

// Negotiate picks the supported language best matching an Accept-Language header
func Negotiate(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return getDefault().String()
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return getDefault().String()
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return getDefault().String()
	}
	return supported[idx].String()
}

// Translate returns the message for id in lang, or fallback when no translation exists
func Translate(lang, id, fallback string, data map[string]interface{}) string {
	if Init() != nil || bundle == nil {
		return fallback
	}
	localizer := i18n.NewLocalizer(bundle, lang, getDefault().String())
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil || msg == "" {
		return fallback
	}
	return msg
}

// FromContext returns the language negotiated for the request
func FromContext(c *gin.Context) string {
	if lang, ok := c.Get(ContextKey); ok {
		if s, ok := lang.(string); ok && s != "" {
			return s
		}
	}
	return getDefault().String()
}

// TranslateContext translates id for the language negotiated on c
func TranslateContext(c *gin.Context, id, fallback string, data map[string]interface{}) string {
	return Translate(FromContext(c), id, fallback, data)
}
