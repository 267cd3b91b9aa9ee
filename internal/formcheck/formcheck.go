// Package formcheck applies the host application's client-side form
// validation to parsed pages: forms tagged needs-validation refuse to
// submit while any control fails its constraints, and the first visible
// field receives focus when the page is ready.
package formcheck

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"

	"github.com/retiroapp/expctl/internal/page"
)

const (
	// ValidationClass marks forms that are validated before submitting.
	ValidationClass = "needs-validation"
	// ValidatedClass is added to a form once a submit was attempted.
	ValidatedClass = "was-validated"

	focusSelector = `input:not([type="hidden"]), select, textarea`
)

// BoundForm is a needs-validation form with its submit interception
// attached.
type BoundForm struct {
	sel      *goquery.Selection
	validate *validator.Validate
}

// Submission is the result of a submit attempt.
type Submission struct {
	// Submitted is false when validation prevented the submit.
	Submitted  bool
	Violations []Violation
	// Form holds the values that were sent. Nil when the submit was prevented.
	Form *page.Form
}

// Init binds every form tagged needs-validation in doc. Untagged forms
// are not intercepted.
func Init(doc *page.Document) []*BoundForm {
	v := validator.New()
	var forms []*BoundForm
	doc.Find("form." + ValidationClass).Each(func(_ int, s *goquery.Selection) {
		forms = append(forms, &BoundForm{sel: s, validate: v})
	})
	return forms
}

// Action returns the form's action attribute.
func (f *BoundForm) Action() string {
	action, _ := f.sel.Attr("action")
	return action
}

// Method returns the form's method, GET when unset.
func (f *BoundForm) Method() string {
	method, _ := f.sel.Attr("method")
	if method == "" {
		return "GET"
	}
	return strings.ToUpper(method)
}

// Validated reports whether the form carries the was-validated marker.
func (f *BoundForm) Validated() bool {
	return f.sel.HasClass(ValidatedClass)
}

// CheckValidity runs constraint validation with the given values
// overriding the ones in the markup.
func (f *BoundForm) CheckValidity(values url.Values) []Violation {
	controls := f.controls(values)
	radios := radioGroups(controls)

	var violations []Violation
	for _, c := range controls {
		violations = append(violations, c.check(f.validate, radios)...)
	}
	return violations
}

// Submit attempts to submit the form. An invalid form is not submitted.
// Either way the form is marked was-validated, and the marker is never
// removed.
func (f *BoundForm) Submit(values url.Values) Submission {
	violations := f.CheckValidity(values)
	f.sel.AddClass(ValidatedClass)

	if len(violations) > 0 {
		return Submission{Violations: violations}
	}

	form := &page.Form{Method: f.Method(), Action: f.Action()}
	for _, c := range f.controls(values) {
		if !c.successful() {
			continue
		}
		for _, v := range c.submitted() {
			form.Fields = append(form.Fields, page.Field{Type: c.typ, Name: c.name, Value: v})
		}
	}
	return Submission{Submitted: true, Form: form}
}

// FocusFirst gives focus to the first visible input, select or textarea
// in the document by marking it autofocus. It returns false when the page
// has no such field.
func FocusFirst(doc *page.Document) (*goquery.Selection, bool) {
	var found *goquery.Selection
	doc.Find(focusSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if isHidden(s) {
			return true
		}
		found = s
		return false
	})
	if found == nil {
		return nil, false
	}

	doc.Find("[autofocus]").RemoveAttr("autofocus")
	found.SetAttr("autofocus", "")
	return found, true
}

func isHidden(s *goquery.Selection) bool {
	if typ, _ := s.Attr("type"); strings.EqualFold(typ, "hidden") {
		return true
	}
	for n := s; n.Length() > 0; n = n.Parent() {
		if _, ok := n.Attr("hidden"); ok {
			return true
		}
		style, _ := n.Attr("style")
		style = strings.ReplaceAll(strings.ToLower(style), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return true
		}
	}
	return false
}
