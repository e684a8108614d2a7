package main

import (
	"charm.land/lipgloss/v2"
)

type styles struct {
	Goal    lipgloss.Style
	Rule    lipgloss.Style
	Open    lipgloss.Style
	Qed     lipgloss.Style
	Failed  lipgloss.Style
	Heading lipgloss.Style
	Dim     lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		Goal:    lipgloss.NewStyle().Bold(true),
		Rule:    lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
		Open:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Qed:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		Failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
