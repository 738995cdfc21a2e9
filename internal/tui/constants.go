package tui

import "time"

// UI Layout Constants

const (
	// Sidebar takes SidebarPercent of the width, never less than SidebarMinWidth
	SidebarMinWidth = 36
	SidebarPercent  = 35

	// Viewport Padding and Borders
	ViewportBorderWidth       = 2 // Width consumed by borders
	ViewportPaddingHorizontal = 4 // Horizontal padding (left + right)

	// StatusBarHeight is the single footer line
	StatusBarHeight = 1

	// DetailHeaderLines is the fixed part of the detail pane above the
	// parameter rows: title, method line, description, blank, "Parameters",
	// blank, curl label and line, blank, outcome line
	DetailHeaderLines = 10

	// ModalOverheadLines is title (2) + padding (2) + border (2)
	ModalOverheadLines = 6

	// MinResponseHeight keeps the response viewport usable on small terminals
	MinResponseHeight = 3
)

const (
	// MaxStatusLength truncates footer messages
	MaxStatusLength = 100

	// StatusMessageTimeout clears status and error messages
	StatusMessageTimeout = 4 * time.Second

	// FieldCharLimit bounds parameter input length
	FieldCharLimit = 64
)
