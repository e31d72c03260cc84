package email

import (
	"strings"
	"testing"

	"eventmenu/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRenderer_RSVPConfirmation(t *testing.T) {
	data := &domain.RSVPConfirmationEmailData{
		Email:     "ana@example.com",
		GuestName: "Ana <3",
		EventName: "Brunch",
		Selections: []domain.SelectedItem{
			{ID: "i1", Name: "Fruit", Description: "Apricot", Category: "Kolaches"},
			{ID: "i2", Name: "Sausage", Category: "Savory"},
		},
	}
	subject, html, text, err := NewTemplateRenderer().Render("rsvp_confirmation", data)
	require.NoError(t, err)

	assert.Equal(t, "Your RSVP for Brunch is confirmed", subject)
	assert.Contains(t, html, "Ana &lt;3")
	assert.Contains(t, html, "<strong>Fruit</strong> (Kolaches): Apricot")
	assert.Contains(t, text, "- Sausage (Savory)")
	assert.Contains(t, text, "Ana <3")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	_, _, _, err := NewTemplateRenderer().Render("missing", nil)
	assert.Error(t, err)
}

func TestTemplateRenderer_SubjectIsSingleLine(t *testing.T) {
	data := &domain.RSVPConfirmationEmailData{EventName: "Brunch\nat\tNoon"}
	subject, _, _, err := NewTemplateRenderer().Render("rsvp_confirmation", data)
	require.NoError(t, err)
	assert.Equal(t, "Your RSVP for Brunch at Noon is confirmed", subject)
}

func TestTemplateRenderer_EveryMessageIsComplete(t *testing.T) {
	entries, err := templateFS.ReadDir("templates")
	require.NoError(t, err)
	r := NewTemplateRenderer()
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), "_subject.txt")
		if !ok {
			continue
		}
		t.Run(name, func(t *testing.T) {
			subject, html, text, err := r.Render(name, &domain.RSVPConfirmationEmailData{})
			require.NoError(t, err)
			assert.NotEmpty(t, subject)
			assert.NotEmpty(t, html)
			assert.NotEmpty(t, text)
		})
	}
}
