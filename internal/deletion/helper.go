package deletion

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retiroapp/expctl/internal/dialog"
	"github.com/retiroapp/expctl/internal/page"
)

// Submitter sends a form from the context of a page and returns the page
// the browser would navigate to.
type Submitter interface {
	Submit(ctx context.Context, doc *page.Document, form *page.Form) (*page.Document, error)
}

// Outcome reports what a ConfirmDeletion call did.
type Outcome struct {
	FlowID    string
	Confirmed bool
	Dismissal dialog.DismissReason
	// Form is the submitted form; nil when nothing was submitted.
	Form *page.Form
	// Landing is the page the server answered with.
	Landing *page.Document
}

// Helper runs the confirm-then-submit deletion flow against a page.
type Helper struct {
	presenter dialog.Presenter
	doc       *page.Document
	submitter Submitter
	log       *zap.SugaredLogger
}

// NewHelper creates a Helper. doc is the page the deletion is started from;
// its anti-forgery token is sent with the form.
func NewHelper(presenter dialog.Presenter, doc *page.Document, submitter Submitter, log *zap.SugaredLogger) *Helper {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Helper{
		presenter: presenter,
		doc:       doc,
		submitter: submitter,
		log:       log,
	}
}

// ConfirmDeletion asks the user to confirm deleting targetID and, if they
// do, posts a form carrying the page's anti-forgery token to the
// endpoint + targetID + "/" URL.
//
// Cancelling is not an error: the returned Outcome has Confirmed unset and
// neither the page nor the server are touched. A page without a token
// fails with page.ErrTokenMissing before any form is created. Overlapping
// calls are not coordinated.
func (h *Helper) ConfirmDeletion(ctx context.Context, targetID any, label string, opts ...Option) (*Outcome, error) {
	o := buildOptions(opts)
	kind := Gestor
	if o.Kind != nil {
		kind = *o.Kind
	}

	out := &Outcome{FlowID: uuid.New().String()}
	log := h.log.With("flow_id", out.FlowID, "kind", kind.Name, "target", targetID)

	cfg := confirmDialog(kind, o.Variant, label)
	if o.Dialog != nil {
		o.Dialog(&cfg)
	}

	result, err := h.presenter.Fire(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("confirmation dialog failed: %w", err)
	}
	if !result.IsConfirmed {
		out.Dismissal = result.DismissReason
		log.Infow("deletion cancelled", "reason", result.DismissReason)
		return out, nil
	}
	out.Confirmed = true

	if o.Variant == Rich {
		loading, err := h.presenter.Open(ctx, loadingDialog(kind))
		if err != nil {
			return nil, fmt.Errorf("loading dialog failed: %w", err)
		}
		defer loading.Close()
	}

	token, err := h.doc.Token(o.TokenField)
	if err != nil {
		return out, err
	}

	form := page.NewPostForm(actionURL(o.Endpoint, targetID))
	form.AddHidden(o.TokenField, token)
	h.doc.AppendForm(form)
	out.Form = form

	log.Infow("submitting deletion", "action", form.Action, "variant", o.Variant)
	landing, err := h.submitter.Submit(ctx, h.doc, form)
	if err != nil {
		return out, fmt.Errorf("failed to submit deletion of %v: %w", targetID, err)
	}
	out.Landing = landing
	log.Infow("deletion submitted", "status", landing.StatusCode, "landing", landing.URL)
	return out, nil
}
