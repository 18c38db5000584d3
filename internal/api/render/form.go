// Package render turns a bank redirect into the page that sends the payer there.
package render

import (
	"bytes"
	"html/template"

	"github.com/Behyna/bankgateway/internal/service"
)

var formTemplate = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Redirecting to bank</title></head>
<body onload="document.forms[0].submit()">
<form method="POST" action="{{.URL}}">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{- end}}
<noscript><button type="submit">Continue</button></noscript>
</form>
</body>
</html>
`))

// Form renders a self-submitting POST form. Field order is kept.
func Form(r service.RedirectResponse) ([]byte, error) {
	var buf bytes.Buffer
	if err := formTemplate.Execute(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
