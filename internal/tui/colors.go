package tui

// Color constants for the punchbook board theme
const (
	ColorBorder        = "#3A3F55" // Grey-blue
	ColorPrimaryText   = "#E6EAF2" // Primary text
	ColorSecondaryText = "#B1B8C7" // Subtle purple-tinted grey
	ColorHelpText      = "240"     // Dark grey for help text

	ColorAccentMain   = "#7C3AED" // Titles, active borders
	ColorAccentBright = "#A78BFA" // Highlights

	ColorWorking = "#22C55E" // Worker on the clock
	ColorResting = "#F59E0B" // Worker on break
	ColorOff     = "#6D7383" // Worker off the clock
	ColorError   = "#EF4444" // Store errors, capped budgets
)
