package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorFresh     = lipgloss.Color("78")  // Green
)

// feedPalette colors feed markers. A feed keeps its color for the session.
var feedPalette = []lipgloss.Color{
	lipgloss.Color("#58a6ff"),
	lipgloss.Color("#d2a8ff"),
	lipgloss.Color("#7ee787"),
	lipgloss.Color("#ffa657"),
	lipgloss.Color("#ff7b72"),
	lipgloss.Color("#f778ba"),
	lipgloss.Color("#d29922"),
	lipgloss.Color("#a5d6ff"),
}

// Header styles the top line: scope name, unread badge, spinner.
var Header = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// Badge styles the unread counter in the header.
var Badge = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("0")).
	Background(colorHighlight).
	Padding(0, 1)

// FeedName styles the feed title above an item.
var FeedName = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ItemTitle styles an item headline.
var ItemTitle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255"))

// SelectedTitle styles the headline under the cursor.
var SelectedTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary)

// ItemDate styles the publish date line.
var ItemDate = lipgloss.NewStyle().
	Foreground(colorMuted)

// ItemDescription styles the description snippet.
var ItemDescription = lipgloss.NewStyle().
	Foreground(colorSecondary)

// FreshMarker flags rows that arrived by poll and are not yet seen.
var FreshMarker = lipgloss.NewStyle().
	Foreground(colorFresh).
	Bold(true)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// HelpStyle for placeholder text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// RouteBar style for the route input line.
var RouteBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("240")).
	Padding(0, 1)

// Sidebar frames the feed picker.
var Sidebar = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder(), false, true, false, false).
	BorderForeground(colorMuted).
	Padding(0, 1)

// PickerGroup styles group rows in the picker.
var PickerGroup = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// PickerFeed styles feed rows in the picker.
var PickerFeed = lipgloss.NewStyle().
	Foreground(lipgloss.Color("252"))

// PickerCursor styles the picker row under the cursor.
var PickerCursor = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary)

// PickerActive marks the row matching the active scope.
var PickerActive = lipgloss.NewStyle().
	Underline(true)

// DebugPanel frames the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// DebugHeaderStyle styles section headers in the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
