// Package translate formats user-facing messages for the current locale.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

var (
	mutex   sync.Mutex
	printer *message.Printer
)

// systemLocales returns the locales of the user, falling back to en-US.
func systemLocales() (locales []string) {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("vole: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	return
}

// SetLanguage overrides the detected locales. With no arguments the
// system locales are used again.
func SetLanguage(languages ...string) {
	if len(languages) == 0 {
		languages = systemLocales()
	}

	mutex.Lock()
	defer mutex.Unlock()

	printer = message.NewPrinter(message.MatchLanguage(languages...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	mutex.Lock()
	if printer == nil {
		printer = message.NewPrinter(message.MatchLanguage(systemLocales()...))
	}
	p := printer
	mutex.Unlock()

	return p.Sprintf(key, args...)
}
