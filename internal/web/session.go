package web

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "customerd_session"

// Flash is a one-shot banner shown on the next rendered page.
type Flash struct {
	Level   string // "success" or "error"
	Message string
}

func init() {
	gob.Register(Flash{})
}

func (h *Handler) session(r *http.Request) *sessions.Session {
	// Get never fails for cookie stores beyond decoding errors, in
	// which case it hands back a fresh session.
	session, _ := h.sessions.Get(r, sessionName)
	return session
}

func (h *Handler) addFlash(w http.ResponseWriter, r *http.Request, level, message string) {
	session := h.session(r)
	session.AddFlash(Flash{Level: level, Message: message})
	_ = session.Save(r, w)
}

func (h *Handler) takeFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	session := h.session(r)
	raw := session.Flashes()
	if len(raw) > 0 {
		_ = session.Save(r, w)
	}

	flashes := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	return flashes
}
