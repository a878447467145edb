package uistream

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	UserMsg   int // User message accent
	Reasoning int // Reasoning block text
	ToolCall  int // Tool part header
	Data      int // Data part header
	Error     int // Error messages
	Success   int // Completed tool output
	Muted     int // Status bar, placeholders, step separators
	CodeBg    int // Code block background
	Accent    int // Headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:   4,
		Reasoning: 8,
		ToolCall:  3,
		Data:      6,
		Error:     1,
		Success:   2,
		Muted:     8,
		CodeBg:    0,
		Accent:    5,
	}
}
