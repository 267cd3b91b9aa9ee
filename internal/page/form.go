package page

import (
	"html"
	"net/http"
	"net/url"
	"strings"
)

// Field is a single form input.
type Field struct {
	Type  string
	Name  string
	Value string
}

// Form is a synthesized HTML form, submitted with
// application/x-www-form-urlencoded semantics.
type Form struct {
	Method string
	Action string
	Fields []Field
}

// NewPostForm returns an empty POST form targeting action.
func NewPostForm(action string) *Form {
	return &Form{Method: http.MethodPost, Action: action}
}

// AddHidden appends a hidden input.
func (f *Form) AddHidden(name, value string) {
	f.Fields = append(f.Fields, Field{Type: "hidden", Name: name, Value: value})
}

// Add appends a text input.
func (f *Form) Add(name, value string) {
	f.Fields = append(f.Fields, Field{Type: "text", Name: name, Value: value})
}

// Values returns the form's fields as url.Values, in field order per name.
func (f *Form) Values() url.Values {
	v := url.Values{}
	for _, field := range f.Fields {
		v.Add(field.Name, field.Value)
	}
	return v
}

// Encode returns the urlencoded request body.
func (f *Form) Encode() string {
	return f.Values().Encode()
}

// HTML renders the form element.
func (f *Form) HTML() string {
	var b strings.Builder
	b.WriteString(`<form method="` + html.EscapeString(f.Method) + `" action="` + html.EscapeString(f.Action) + `">`)
	for _, field := range f.Fields {
		b.WriteString(`<input type="` + html.EscapeString(field.Type) +
			`" name="` + html.EscapeString(field.Name) +
			`" value="` + html.EscapeString(field.Value) + `">`)
	}
	b.WriteString(`</form>`)
	return b.String()
}
