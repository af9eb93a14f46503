package email

type Email struct {
	From     string
	To       []string
	Cc       []string
	Subject  string
	Body     string
	HTMLBody string
}

type TemplateData map[string]interface{}
