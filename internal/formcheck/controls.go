package formcheck

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"
)

// Constraint names follow the browser's ValidityState flags.
const (
	ValueMissing    = "valueMissing"
	TypeMismatch    = "typeMismatch"
	TooShort        = "tooShort"
	TooLong         = "tooLong"
	RangeUnderflow  = "rangeUnderflow"
	RangeOverflow   = "rangeOverflow"
	PatternMismatch = "patternMismatch"
)

// Violation is a failed constraint on a form control.
type Violation struct {
	Field      string
	Constraint string
	Message    string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

const dateLayout = "2006-01-02"

// floatingPoint is the grammar of a valid floating-point number in HTML.
var floatingPoint = regexp.MustCompile(`^-?(?:\d+|\d*\.\d+)(?:[eE][-+]?\d+)?$`)

// control is a form control with its effective value.
type control struct {
	sel      *goquery.Selection
	tag      string
	typ      string
	name     string
	value    string
	checked  bool
	disabled bool

	// multiple selects carry every selected option in selected.
	multiple bool
	selected []string
}

func (f *BoundForm) controls(values url.Values) []*control {
	var controls []*control
	f.sel.Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		c := newControl(s)
		if c.name != "" {
			if v, ok := values[c.name]; ok {
				c.override(v)
			}
		}
		c.sanitize()
		controls = append(controls, c)
	})
	return controls
}

func newControl(s *goquery.Selection) *control {
	c := &control{sel: s, tag: goquery.NodeName(s)}
	c.name, _ = s.Attr("name")
	_, c.disabled = s.Attr("disabled")

	switch c.tag {
	case "textarea":
		c.typ = "textarea"
		c.value = s.Text()
	case "select":
		c.typ = "select"
		_, c.multiple = s.Attr("multiple")
		if c.multiple {
			s.Find("option[selected]").Each(func(_ int, opt *goquery.Selection) {
				c.selected = append(c.selected, optionValue(opt))
			})
			break
		}
		opt := s.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = s.Find("option").First()
		}
		c.value = optionValue(opt)
	default:
		typ, _ := s.Attr("type")
		c.typ = strings.ToLower(typ)
		if c.typ == "" {
			c.typ = "text"
		}
		c.value, _ = s.Attr("value")
		_, c.checked = s.Attr("checked")
		if (c.typ == "checkbox" || c.typ == "radio") && c.value == "" {
			c.value = "on"
		}
	}
	return c
}

func optionValue(opt *goquery.Selection) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(opt.Text())
}

// override applies a user-supplied value. For checkboxes and radios a
// value selects the control when it matches (or is "on" for checkboxes);
// an empty value unchecks it.
func (c *control) override(values []string) {
	switch c.typ {
	case "checkbox", "radio":
		c.checked = false
		for _, v := range values {
			if v == c.value || (c.typ == "checkbox" && v == "on") {
				c.checked = true
			}
		}
	case "select":
		if c.multiple {
			c.selected = nil
			for _, v := range values {
				if c.hasOption(v) {
					c.selected = append(c.selected, v)
				}
			}
			return
		}
		if len(values) > 0 {
			c.value = values[0]
		}
	default:
		if len(values) > 0 {
			c.value = values[0]
		}
	}
}

func (c *control) hasOption(v string) bool {
	found := false
	c.sel.Find("option").EachWithBreak(func(_ int, opt *goquery.Selection) bool {
		found = optionValue(opt) == v
		return !found
	})
	return found
}

// sanitize applies the browser's value sanitization: number and date
// inputs holding a value outside their grammar are cleared, range inputs
// fall back to their default.
func (c *control) sanitize() {
	if c.tag != "input" {
		return
	}
	switch c.typ {
	case "number":
		if c.value != "" && !validNumber(c.value) {
			c.value = ""
		}
	case "range":
		if !validNumber(c.value) {
			c.value = c.rangeDefault()
		}
	case "date":
		if _, err := time.Parse(dateLayout, c.value); c.value != "" && err != nil {
			c.value = ""
		}
	}
}

func validNumber(s string) bool {
	if !floatingPoint.MatchString(s) {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// rangeDefault is the value a range input falls back to: halfway between
// min and max, 0 and 100 when unset.
func (c *control) rangeDefault() string {
	lo, ok := c.floatAttr("min")
	if !ok {
		lo = 0
	}
	hi, ok := c.floatAttr("max")
	if !ok {
		hi = 100
	}
	if hi < lo {
		return strconv.FormatFloat(lo, 'f', -1, 64)
	}
	return strconv.FormatFloat(lo+(hi-lo)/2, 'f', -1, 64)
}

// submitted returns the values the control contributes to the form data.
func (c *control) submitted() []string {
	if c.multiple {
		return c.selected
	}
	return []string{c.value}
}

// barred reports whether the control takes part in constraint validation.
func (c *control) barred() bool {
	if c.disabled {
		return true
	}
	switch c.typ {
	case "hidden", "submit", "button", "reset", "image":
		return true
	}
	_, readonly := c.sel.Attr("readonly")
	return readonly && c.tag == "input"
}

// successful reports whether the control's value is sent on submit.
func (c *control) successful() bool {
	if c.disabled || c.name == "" {
		return false
	}
	switch c.typ {
	case "submit", "button", "reset", "image", "file":
		return false
	case "checkbox", "radio":
		return c.checked
	}
	return true
}

func (c *control) label() string {
	if c.name != "" {
		return c.name
	}
	if id, ok := c.sel.Attr("id"); ok {
		return id
	}
	return c.tag
}

func (c *control) violation(constraint, format string, args ...any) Violation {
	return Violation{Field: c.label(), Constraint: constraint, Message: fmt.Sprintf(format, args...)}
}

// radioGroups reports, per radio group name, whether any member is checked.
func radioGroups(controls []*control) map[string]bool {
	groups := make(map[string]bool)
	for _, c := range controls {
		if c.typ == "radio" && c.name != "" {
			groups[c.name] = groups[c.name] || c.checked
		}
	}
	return groups
}

func (c *control) check(v *validator.Validate, radios map[string]bool) []Violation {
	if c.barred() {
		return nil
	}

	_, required := c.sel.Attr("required")
	if required && c.missing(radios) {
		return []Violation{c.violation(ValueMissing, "completa este campo")}
	}
	if c.typ == "checkbox" || c.typ == "radio" || c.typ == "file" || c.value == "" {
		return nil
	}

	var out []Violation
	switch c.typ {
	case "email":
		if v.Var(c.value, "email") != nil {
			out = append(out, c.violation(TypeMismatch, "%q no es un correo electrónico válido", c.value))
		}
	case "url":
		if v.Var(c.value, "url") != nil {
			out = append(out, c.violation(TypeMismatch, "%q no es una URL válida", c.value))
		}
	case "number", "range":
		out = append(out, c.checkNumber()...)
	case "date":
		out = append(out, c.checkDate()...)
	}

	n := utf8.RuneCountInString(c.value)
	if minLen, ok := c.intAttr("minlength"); ok && n < minLen {
		out = append(out, c.violation(TooShort, "debe tener al menos %d caracteres", minLen))
	}
	if maxLen, ok := c.intAttr("maxlength"); ok && n > maxLen {
		out = append(out, c.violation(TooLong, "no puede superar %d caracteres", maxLen))
	}

	if pattern, ok := c.sel.Attr("pattern"); ok && c.tag == "input" {
		// Browsers ignore patterns that do not compile; so do we.
		if re, err := regexp.Compile("^(?:" + pattern + ")$"); err == nil && !re.MatchString(c.value) {
			out = append(out, c.violation(PatternMismatch, "el formato no es válido"))
		}
	}
	return out
}

func (c *control) missing(radios map[string]bool) bool {
	switch c.typ {
	case "checkbox":
		return !c.checked
	case "radio":
		return !c.checked && !radios[c.name]
	}
	if c.multiple {
		return len(c.selected) == 0
	}
	return c.value == ""
}

func (c *control) checkNumber() []Violation {
	// Sanitized values always parse.
	n, _ := strconv.ParseFloat(c.value, 64)
	var out []Violation
	if lo, ok := c.floatAttr("min"); ok && n < lo {
		out = append(out, c.violation(RangeUnderflow, "debe ser mayor o igual a %v", lo))
	}
	if hi, ok := c.floatAttr("max"); ok && n > hi {
		out = append(out, c.violation(RangeOverflow, "debe ser menor o igual a %v", hi))
	}
	return out
}

func (c *control) checkDate() []Violation {
	d, _ := time.Parse(dateLayout, c.value)
	var out []Violation
	if s, ok := c.sel.Attr("min"); ok {
		if lo, err := time.Parse(dateLayout, s); err == nil && d.Before(lo) {
			out = append(out, c.violation(RangeUnderflow, "debe ser %s o posterior", s))
		}
	}
	if s, ok := c.sel.Attr("max"); ok {
		if hi, err := time.Parse(dateLayout, s); err == nil && d.After(hi) {
			out = append(out, c.violation(RangeOverflow, "debe ser %s o anterior", s))
		}
	}
	return out
}

func (c *control) intAttr(name string) (int, bool) {
	s, ok := c.sel.Attr(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (c *control) floatAttr(name string) (float64, bool) {
	s, ok := c.sel.Attr(name)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}
