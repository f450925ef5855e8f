package models

// Settings holds the display and behavior options editable from the
// admin page. Provider credentials are deliberately not here; they come
// from the environment and cannot be changed at runtime.
type Settings struct {
	ButtonText      string `json:"button_text"`
	AutoRedirect    bool   `json:"auto_redirect"`
	AutoProvision   bool   `json:"auto_provision"`
	DefaultRedirect string `json:"default_redirect"`
}

// DefaultSettings returns the options used before the admin has saved
// anything.
func DefaultSettings() Settings {
	return Settings{
		ButtonText:      "Log in with Microsoft",
		AutoRedirect:    false,
		AutoProvision:   false,
		DefaultRedirect: "/",
	}
}

// SettingsForm represents form data for updating settings
type SettingsForm struct {
	ButtonText      string `json:"button_text"`
	AutoRedirect    bool   `json:"auto_redirect"`
	AutoProvision   bool   `json:"auto_provision"`
	DefaultRedirect string `json:"default_redirect"`
}

// Validate validates the settings form data
func (f *SettingsForm) Validate() []string {
	var errors []string

	if f.ButtonText == "" {
		errors = append(errors, "Button text is required")
	}

	if len(f.ButtonText) > 100 {
		errors = append(errors, "Button text must be less than 100 characters")
	}

	if f.DefaultRedirect == "" {
		errors = append(errors, "Default redirect is required")
	}

	if f.DefaultRedirect != "" && f.DefaultRedirect[0] != '/' {
		errors = append(errors, "Default redirect must be a local path")
	}

	if len(f.DefaultRedirect) > 1 && f.DefaultRedirect[1] == '/' {
		errors = append(errors, "Default redirect must be a local path")
	}

	return errors
}
