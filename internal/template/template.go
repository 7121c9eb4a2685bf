// Package template renders context templates against variable maps.
package template

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	"github.com/temirov/weave/internal/types"
)

const (
	variableLookupFunctionName = "var"
	readTemplateErrorTemplate  = "reading template %s: %w"
	parseTemplateErrorTemplate = "parsing template %s: %w"
	renderTemplateErrorFormat  = "rendering template %s: %w"
)

// Render loads the template at templatePath and renders it against the
// variable map and the whole-run dump accumulator. Variables are reachable
// both as direct map keys and through the `var` function, which also resolves
// tier keys that are not valid field names.
func Render(templatePath string, variables map[string]string, dump string) (string, error) {
	templateBytes, readError := os.ReadFile(templatePath)
	if readError != nil {
		return "", fmt.Errorf(readTemplateErrorTemplate, templatePath, readError)
	}

	templateData := make(map[string]string, len(variables)+1)
	for name, value := range variables {
		templateData[name] = value
	}
	templateData[types.DumpVariableName] = dump

	functionMap := texttemplate.FuncMap{
		variableLookupFunctionName: func(name string) string {
			return templateData[name]
		},
	}

	parsedTemplate, parseError := texttemplate.
		New(filepath.Base(templatePath)).
		Funcs(functionMap).
		Option("missingkey=zero").
		Parse(string(templateBytes))
	if parseError != nil {
		return "", fmt.Errorf(parseTemplateErrorTemplate, templatePath, parseError)
	}

	var rendered strings.Builder
	if executeError := parsedTemplate.Execute(&rendered, templateData); executeError != nil {
		return "", fmt.Errorf(renderTemplateErrorFormat, templatePath, executeError)
	}
	return rendered.String(), nil
}
