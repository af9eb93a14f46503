package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

const TemplateOverdueWarning = "overdue_warning"

const overdueWarningHTML = `<p>Hello {{.Name}},</p>
<p>The item you borrowed for <strong>{{.Title}}</strong> was due back on {{.DueAt}}.</p>
<p>Please return it to the department as soon as possible.</p>`

// TemplateManager renders named html/template templates.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager comes preloaded with the built-in templates.
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{templates: make(map[string]*template.Template)}
	// built-ins are constants and always parse
	_ = tm.AddTemplate(TemplateOverdueWarning, overdueWarningHTML)
	return tm
}

func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()
	return nil
}
