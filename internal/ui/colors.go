package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette(Colors{
	Title:  "#FFCC00",
	OK:     "#04B575",
	Error:  "#FF4F4F",
	Warn:   "#FFA500",
	Muted:  "#767676",
	Accent: "#FFDB4D",
})

// Colors names the hex colors a [Palette] is built from.
type Colors struct {
	Title, OK, Error, Warn, Muted, Accent string
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	accent lipgloss.Style
}

func NewPalette(c Colors) *Palette {
	return &Palette{
		title:  NewBold(c.Title).MarginBottom(1),
		ok:     NewBold(c.OK),
		err:    NewBold(c.Error),
		warn:   NewStyle(c.Warn),
		help:   NewEm(c.Muted),
		accent: NewStyle(c.Accent),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
