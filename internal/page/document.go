package page

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTokenField is the hidden input name the host application renders
// its anti-forgery token under.
const DefaultTokenField = "csrfmiddlewaretoken"

// ErrTokenMissing is returned when the page carries no anti-forgery field.
var ErrTokenMissing = errors.New("anti-forgery token field not found in page")

// Document is a parsed server-rendered page. It plays the role of the
// browser's current document: tokens are read from it and synthesized
// forms are appended to it.
type Document struct {
	URL        *url.URL
	StatusCode int

	doc *goquery.Document
}

// Load parses an HTML page. pageURL may be empty for pages read from disk.
func Load(r io.Reader, pageURL string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	d := &Document{doc: doc}
	if pageURL != "" {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
		}
		d.URL = u
		doc.Url = u
	}
	return d, nil
}

// LoadString is Load for an in-memory page.
func LoadString(html, pageURL string) (*Document, error) {
	return Load(strings.NewReader(html), pageURL)
}

// Find runs a CSS selector against the document.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Title returns the page title.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// Token reads the value of the hidden input named field. The value is read
// from the document on every call and never cached.
func (d *Document) Token(field string) (string, error) {
	sel := d.doc.Find(fmt.Sprintf(`input[name="%s"]`, field)).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("%w: %s", ErrTokenMissing, field)
	}
	value, _ := sel.Attr("value")
	return value, nil
}

// AppendForm adds the form to the end of the document body and returns the
// inserted element.
func (d *Document) AppendForm(f *Form) *goquery.Selection {
	body := d.doc.Find("body").First()
	body.AppendHtml(f.HTML())
	return body.ChildrenFiltered("form").Last()
}

// Message is a flash message shown on a page.
type Message struct {
	Level string // success, info, warning, danger or error; empty if unknown
	Text  string
}

var messageLevels = []string{"success", "info", "warning", "danger", "error"}

// Flashes returns the flash messages rendered on the page with their level,
// read from Bootstrap alert-* classes or Django message tags.
func (d *Document) Flashes() []Message {
	var msgs []Message
	d.doc.Find(".alert, .messages li").Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}
		m := Message{Text: text}
		for _, level := range messageLevels {
			if s.HasClass(level) || s.HasClass("alert-"+level) {
				m.Level = level
				break
			}
		}
		msgs = append(msgs, m)
	})
	return msgs
}

// Messages returns the text of the flash messages rendered on the page.
func (d *Document) Messages() []string {
	var msgs []string
	for _, m := range d.Flashes() {
		msgs = append(msgs, m.Text)
	}
	return msgs
}

// HTML renders the document, including any appended forms.
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}

// Target is a deletion call found in the page's markup, e.g. the onclick
// handler of a delete button in a list row.
type Target struct {
	Func  string
	ID    string
	Label string
}

var targetCall = regexp.MustCompile(`(confirmarEliminacion\w*)\(\s*['"]?([^,'"\s)]+)['"]?\s*,\s*(?:'([^']*)'|"([^"]*)"|` + "`([^`]*)`" + `)\s*\)`)

// Targets lists the deletion calls wired into the page.
func (d *Document) Targets() []Target {
	var targets []Target
	d.doc.Find("[onclick]").Each(func(_ int, s *goquery.Selection) {
		onclick, _ := s.Attr("onclick")
		for _, m := range targetCall.FindAllStringSubmatch(onclick, -1) {
			targets = append(targets, Target{
				Func:  m[1],
				ID:    m[2],
				Label: m[3] + m[4] + m[5],
			})
		}
	})
	return targets
}

// LabelFor returns the label the page shows for id, if any delete control
// on the page references it.
func (d *Document) LabelFor(id string) (string, bool) {
	for _, t := range d.Targets() {
		if t.ID == id {
			return t.Label, true
		}
	}
	return "", false
}
