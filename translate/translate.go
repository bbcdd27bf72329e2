// Package translate formats the messages of the assembler, the interpreter
// and the debugger in the user's language. Keys are en-US fmt formats.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DEFAULT_LOCALE = "en-US"

var printer = message.NewPrinter(language.AmericanEnglish)

func init() {
	printer = message.NewPrinter(message.MatchLanguage(hostLocales()...))
}

// hostLocales returns the preferred locales of the user, most preferred
// first, or DEFAULT_LOCALE when none can be found.
func hostLocales() (tags []string) {
	tags, err := locale.GetLocales()
	if err != nil {
		log.Printf("avr: locale: %v", err)
	}

	if len(tags) == 0 {
		tags = []string{DEFAULT_LOCALE}
	}

	return
}

// SetLocale replaces the host locale with a BCP 47 tag.
// Error values created at package init keep their original text.
func SetLocale(tag string) (err error) {
	lang, err := language.Parse(tag)
	if err != nil {
		return
	}

	printer = message.NewPrinter(lang)
	return
}

// From formats an en-US message key with args in the current locale.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
