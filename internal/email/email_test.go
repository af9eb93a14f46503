package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverdueTemplateRenders(t *testing.T) {
	tm := NewTemplateManager()

	html, err := tm.Render(TemplateOverdueWarning, TemplateData{
		"Name":  "Ada <script>",
		"Title": "Projector for lab",
		"DueAt": "10 Mar 2025 09:00",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Projector for lab")
	assert.Contains(t, html, "Ada &lt;script&gt;")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := NewTemplateManager().Render("missing", nil)
	assert.ErrorContains(t, err, "template not found")
}

func TestGomailProviderValidate(t *testing.T) {
	p := NewGomailProvider(&SMTPConfig{Port: 587, FromEmail: "a@b.c"}, nil)
	assert.ErrorContains(t, p.Validate(), "host")

	p = NewGomailProvider(&SMTPConfig{Host: "smtp", Port: 0, FromEmail: "a@b.c"}, nil)
	assert.ErrorContains(t, p.Validate(), "port")

	p = NewGomailProvider(&SMTPConfig{Host: "smtp", Port: 587}, nil)
	assert.ErrorContains(t, p.Validate(), "sender")

	p = NewGomailProvider(&SMTPConfig{Host: "smtp", Port: 587, FromEmail: "a@b.c"}, nil)
	assert.NoError(t, p.Validate())
	assert.ErrorContains(t, p.Send(&Email{Subject: "x"}), "no recipients")
}

func TestSendTemplateWithoutRenderer(t *testing.T) {
	p := NewGomailProvider(&SMTPConfig{Host: "smtp", Port: 587, FromEmail: "a@b.c"}, nil)
	err := p.SendTemplate([]string{"x@y.z"}, "s", TemplateOverdueWarning, nil)
	assert.ErrorContains(t, err, "renderer")
}
