package dialog

import "context"

// Icon is the severity indicator shown next to the title.
type Icon string

const (
	IconNone     Icon = ""
	IconWarning  Icon = "warning"
	IconError    Icon = "error"
	IconSuccess  Icon = "success"
	IconInfo     Icon = "info"
	IconQuestion Icon = "question"
)

// Symbol returns the glyph drawn for the icon.
func (i Icon) Symbol() string {
	switch i {
	case IconWarning:
		return "⚠"
	case IconError:
		return "✖"
	case IconSuccess:
		return "✔"
	case IconInfo:
		return "ℹ"
	case IconQuestion:
		return "?"
	}
	return ""
}

// Button roles used as CustomClass keys.
const (
	ClassConfirmButton = "confirmButton"
	ClassCancelButton  = "cancelButton"
	ClassActions       = "actions"
)

// Config describes a modal dialog.
type Config struct {
	Title string
	// Text is shown verbatim. HTML takes precedence when both are set.
	Text string
	HTML string
	Icon Icon

	ShowConfirmButton  bool
	ShowCancelButton   bool
	ConfirmButtonText  string
	CancelButtonText   string
	ConfirmButtonColor string
	CancelButtonColor  string
	CustomClass        map[string]string
	ReverseButtons     bool

	// Width in terminal cells. Zero picks a default.
	Width int

	AllowOutsideClick bool
	AllowEscapeKey    bool

	// DidOpen runs once the dialog is displayed.
	DidOpen func(Handle)
}

// New returns a Config with the presenter defaults: a confirm button,
// escape and outside click allowed.
func New(title string) Config {
	return Config{
		Title:             title,
		ShowConfirmButton: true,
		ConfirmButtonText: "OK",
		CancelButtonText:  "Cancel",
		AllowOutsideClick: true,
		AllowEscapeKey:    true,
	}
}

// Body returns the dialog body as terminal text.
func (c Config) Body() string {
	if c.HTML != "" {
		return Markup(c.HTML)
	}
	return c.Text
}

// Dismissable reports whether the user can close the dialog without
// pressing a button.
func (c Config) Dismissable() bool {
	return c.AllowEscapeKey || c.AllowOutsideClick
}

// DismissReason says how a dialog was closed without confirmation.
type DismissReason string

const (
	DismissCancel   DismissReason = "cancel"
	DismissEsc      DismissReason = "esc"
	DismissBackdrop DismissReason = "backdrop"
	DismissClose    DismissReason = "close"
)

// Result is the outcome of a dialog.
type Result struct {
	IsConfirmed   bool
	IsDismissed   bool
	DismissReason DismissReason
}

// Confirmed is the Result of pressing the confirm button.
func Confirmed() Result {
	return Result{IsConfirmed: true}
}

// Dismissed is the Result of closing the dialog any other way.
func Dismissed(reason DismissReason) Result {
	return Result{IsDismissed: true, DismissReason: reason}
}

// Handle controls an open dialog.
type Handle interface {
	ShowLoading()
	Close()
}

// Presenter displays dialogs to the user.
type Presenter interface {
	// Fire shows the dialog and waits until the user resolves it.
	Fire(ctx context.Context, cfg Config) (Result, error)
	// Open shows the dialog without waiting. The caller closes it.
	Open(ctx context.Context, cfg Config) (Handle, error)
}
