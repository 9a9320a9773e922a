package template

import (
	"bytes"
	"os"
	"text/template"

	"github.com/rotisserie/eris"
)

// Render executes a SQL text template with params.
func Render(queryTemplate string, params map[string]any) (string, error) {
	tmpl, err := template.New("sql").Option("missingkey=error").Parse(queryTemplate)
	if err != nil {
		return "", eris.Wrap(err, "failed to parse query template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", eris.Wrap(err, "failed to execute query template")
	}

	return buf.String(), nil
}

// ExecuteSqlTemplate renders the template stored at templatePath.
func ExecuteSqlTemplate(templatePath string, params map[string]any) (string, error) {
	content, err := ReadSqlTemplate(templatePath)
	if err != nil {
		return "", err
	}
	return Render(content, params)
}

// ReadSqlTemplate reads a SQL template file and returns its contents as a string
func ReadSqlTemplate(templatePath string) (string, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return "", eris.Wrapf(err, "failed to read template file %s", templatePath)
	}
	return string(content), nil
}
