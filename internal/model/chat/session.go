package chat

// Theme selects the widget colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Session is the full observable state of one widget instance, as pushed to
// the presentation layer. NewMessage is a transient pulse flag that the
// controller raises when a reveal completes and resets shortly after.
type Session struct {
	Messages    []Message `json:"messages"`
	Input       string    `json:"input"`
	IsOpen      bool      `json:"isOpen"`
	IsMinimized bool      `json:"isMinimized"`
	Theme       Theme     `json:"theme"`
	FontSize    int       `json:"fontSize"`
	MenuOpen    bool      `json:"menuOpen"`
	NewMessage  bool      `json:"newMessage"`
}
