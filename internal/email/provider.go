package email

// Provider sends a single message.
type Provider interface {
	Send(email *Email) error
	// SendTemplate renders templateName with data into the HTML body and sends it.
	SendTemplate(to []string, subject string, templateName string, data TemplateData) error
	Validate() error
	Close() error
}

type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
}
