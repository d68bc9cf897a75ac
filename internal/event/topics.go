package event

// Topics published by the service.
const (
	TopicSettingsUpdated = "settings.updated"
	TopicThemeChanged    = "theme.changed"
)

// SettingsUpdated is the payload of TopicSettingsUpdated.
type SettingsUpdated struct {
	ActorID       string   `json:"actorId"`
	ChangedFields []string `json:"changedFields"`
	Settings      any      `json:"settings"`
}

// ThemeChanged is the payload of TopicThemeChanged.
type ThemeChanged struct {
	PreviousThemeID string `json:"previousThemeId"`
	ThemeID         string `json:"themeId"`
}
