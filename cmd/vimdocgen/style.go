package main

import "github.com/charmbracelet/lipgloss"

var (
	stylePass  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleFail  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	styleDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Faint(true)
	styleTitle = lipgloss.NewStyle().Bold(true)
)
