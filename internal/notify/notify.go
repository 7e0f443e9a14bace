package notify

import (
	"github.com/phasestarra7/GroundZero/internal/host"
	"github.com/phasestarra7/GroundZero/internal/session"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const Prefix = "GroundZero | "

// Announcer formats match messages for one locale and hands them to a
// host.Notifier with the GroundZero prefix.
type Announcer struct {
	notifier host.Notifier
	printer  *message.Printer
}

func NewAnnouncer(n host.Notifier, lang string) *Announcer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return &Announcer{
		notifier: n,
		printer:  message.NewPrinter(tag),
	}
}

func (a *Announcer) Sprintf(format string, args ...any) string {
	return a.printer.Sprintf(format, args...)
}

func (a *Announcer) Broadcast(to []session.PlayerID, cue host.Cue, format string, args ...any) {
	if len(to) == 0 {
		return
	}
	a.notifier.Broadcast(to, Prefix+a.printer.Sprintf(format, args...), cue)
}

func (a *Announcer) Tell(to session.PlayerID, format string, args ...any) {
	a.notifier.Message(to, Prefix+a.printer.Sprintf(format, args...), false)
}

func (a *Announcer) Error(to session.PlayerID, format string, args ...any) {
	a.notifier.Message(to, Prefix+a.printer.Sprintf(format, args...), true)
}
