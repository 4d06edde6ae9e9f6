package cmd

import "github.com/charmbracelet/lipgloss"

var bannerStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("63")).
	Padding(0, 2)

func banner() string {
	return bannerStyle.Render("🚀 Jules Email Notification Monitor\nWatching Gmail → Push to Phone")
}
