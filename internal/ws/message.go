package ws

import (
	"time"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/theme"
)

// MessageType discriminates websocket messages.
type MessageType string

const (
	// MessageThemeSnapshot is sent once after connecting.
	MessageThemeSnapshot   MessageType = "theme.snapshot"
	MessageThemeChanged    MessageType = "theme.changed"
	MessageSettingsUpdated MessageType = "settings.updated"
)

// Message is the envelope for all websocket messages.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      any         `json:"data"`
}

// ThemeData carries a resolved theme for snapshot and change messages.
type ThemeData struct {
	PreviousThemeID string              `json:"previousThemeId,omitempty"`
	Theme           theme.ResolvedTheme `json:"theme"`
}

// SettingsUpdatedData names what changed. The full settings are fetched
// over HTTP.
type SettingsUpdatedData struct {
	ActorID       string   `json:"actorId"`
	ChangedFields []string `json:"changedFields"`
}
