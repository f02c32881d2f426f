package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRenderRosterHTML(t *testing.T) {
	html, err := RenderRosterHTML(RosterData{
		EventName:   "AnimeCon 2026",
		GeneratedAt: time.Date(2026, 6, 1, 10, 30, 0, 0, time.UTC),
		Entries: []RosterEntry{
			{Name: "Anna", Email: "anna@example.com", TShirtSize: "M", PreferredHours: 8},
			{Name: "Ömer", Email: "omer@example.com", TShirtSize: "L", PreferredHours: 6},
		},
	})
	require.NoError(t, err)
	require.Contains(t, html, "AnimeCon 2026")
	require.Contains(t, html, "2 volunteers")
	require.Contains(t, html, "anna@example.com")
	require.Contains(t, html, "Ömer")
}

func TestRenderRosterHTMLEscapesInput(t *testing.T) {
	html, err := RenderRosterHTML(RosterData{
		EventName:   "<script>alert(1)</script>",
		GeneratedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NotContains(t, html, "<script>alert(1)</script>")
}
