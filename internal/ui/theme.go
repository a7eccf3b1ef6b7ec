package ui

import "charm.land/lipgloss/v2"

type Theme struct {
	Header       lipgloss.Style
	Status       lipgloss.Style
	PanelTitle   lipgloss.Style
	PanelBorder  lipgloss.Style
	PanelBody    lipgloss.Style
	Overlay      lipgloss.Style
	OverlayTitle lipgloss.Style
	Accent       lipgloss.Style
	Pass         lipgloss.Style
	Fail         lipgloss.Style
	Pending      lipgloss.Style
	Muted        lipgloss.Style
	Info         lipgloss.Style
	Code         lipgloss.Style
}

func DefaultTheme() Theme {
	return ThemeForVariant("dark")
}

func ThemeForVariant(variant string) Theme {
	if variant == "light" {
		return lightTheme()
	}
	return darkTheme()
}

func darkTheme() Theme {
	ink := lipgloss.Color("#0E1420")
	slate := lipgloss.Color("#1B2740")
	powder := lipgloss.Color("#EAF2FF")
	blue := lipgloss.Color("#5EEBFF")
	mint := lipgloss.Color("#67F0A8")
	brick := lipgloss.Color("#FF6F91")
	amber := lipgloss.Color("#FFC857")
	border := lipgloss.Color("#4B5F8A")

	return Theme{
		Header: lipgloss.NewStyle().
			Background(ink).
			Foreground(powder).
			Padding(0, 1),
		Status: lipgloss.NewStyle().
			Background(slate).
			Foreground(powder).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().
			Foreground(blue).
			Bold(true),
		PanelBorder: lipgloss.NewStyle().
			Foreground(border),
		PanelBody: lipgloss.NewStyle().
			Foreground(powder),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Background(ink).
			Foreground(powder).
			Padding(1, 2),
		OverlayTitle: lipgloss.NewStyle().
			Foreground(blue).
			Bold(true),
		Accent: lipgloss.NewStyle().
			Foreground(blue).
			Bold(true),
		Pass: lipgloss.NewStyle().
			Foreground(mint).
			Bold(true),
		Fail: lipgloss.NewStyle().
			Foreground(brick).
			Bold(true),
		Pending: lipgloss.NewStyle().
			Foreground(amber),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CAAC6")),
		Info: lipgloss.NewStyle().
			Foreground(blue),
		Code: lipgloss.NewStyle().
			Foreground(mint),
	}
}

func lightTheme() Theme {
	paper := lipgloss.Color("#F7F8FA")
	cloud := lipgloss.Color("#E3E8F0")
	ink := lipgloss.Color("#1B2433")
	azure := lipgloss.Color("#1565C0")
	leaf := lipgloss.Color("#1E7D42")
	wine := lipgloss.Color("#B3324A")
	honey := lipgloss.Color("#9A6B00")
	border := lipgloss.Color("#9BA8BE")

	return Theme{
		Header:      lipgloss.NewStyle().Background(cloud).Foreground(ink).Padding(0, 1),
		Status:      lipgloss.NewStyle().Background(paper).Foreground(ink).Padding(0, 1),
		PanelTitle:  lipgloss.NewStyle().Foreground(azure).Bold(true),
		PanelBorder: lipgloss.NewStyle().Foreground(border),
		PanelBody:   lipgloss.NewStyle().Foreground(ink),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(azure).
			Background(paper).
			Foreground(ink).
			Padding(1, 2),
		OverlayTitle: lipgloss.NewStyle().Foreground(azure).Bold(true),
		Accent:       lipgloss.NewStyle().Foreground(azure).Bold(true),
		Pass:         lipgloss.NewStyle().Foreground(leaf).Bold(true),
		Fail:         lipgloss.NewStyle().Foreground(wine).Bold(true),
		Pending:      lipgloss.NewStyle().Foreground(honey),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7A92")),
		Info:         lipgloss.NewStyle().Foreground(azure),
		Code:         lipgloss.NewStyle().Foreground(leaf),
	}
}
