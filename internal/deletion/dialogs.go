package deletion

import (
	"fmt"
	"strings"

	"github.com/retiroapp/expctl/internal/dialog"
)

const (
	dangerColor    = "#dc3545"
	secondaryColor = "#6c757d"
)

// confirmDialog builds the confirmation dialog for the variant.
//
// The label goes into the rich variant's markup unescaped. Whether labels
// from the server should be trusted here is undecided; see DESIGN.md.
func confirmDialog(k Kind, v Variant, label string) dialog.Config {
	if v == Rich {
		return richDialog(k, label)
	}
	return simpleDialog(k, label)
}

func simpleDialog(k Kind, label string) dialog.Config {
	cfg := dialog.New("¿Está seguro?")
	cfg.Text = fmt.Sprintf("¿Desea eliminar %s %s %s?", k.Article, k.Noun, label)
	cfg.Icon = dialog.IconWarning
	cfg.ShowCancelButton = true
	cfg.ConfirmButtonColor = dangerColor
	cfg.CancelButtonColor = secondaryColor
	cfg.ConfirmButtonText = "Sí, eliminar"
	cfg.CancelButtonText = "Cancelar"
	cfg.CustomClass = map[string]string{
		dialog.ClassConfirmButton: "btn btn-danger me-2",
		dialog.ClassCancelButton:  "btn btn-secondary",
		dialog.ClassActions:       "gap-3",
	}
	cfg.ReverseButtons = true
	return cfg
}

func richDialog(k Kind, label string) dialog.Config {
	var body strings.Builder
	body.WriteString("<strong>" + label + "</strong>")
	body.WriteString(`<br><small class="text-muted">Esta acción no se puede deshacer</small>`)
	if k.Cascade != "" {
		body.WriteString(`<br><small class="text-muted">` + k.Cascade + `</small>`)
	}

	cfg := dialog.New(fmt.Sprintf("¿Eliminar %s?", capitalize(k.Noun)))
	cfg.HTML = body.String()
	cfg.Icon = dialog.IconWarning
	cfg.ShowCancelButton = true
	cfg.ConfirmButtonColor = dangerColor
	cfg.CancelButtonColor = secondaryColor
	cfg.ConfirmButtonText = `<i class="fas fa-trash-alt me-2"></i>Sí, Eliminar`
	cfg.CancelButtonText = `<i class="fas fa-ban me-2"></i>Cancelar`
	cfg.CustomClass = map[string]string{
		dialog.ClassConfirmButton: "btn btn-danger px-4 me-3",
		dialog.ClassCancelButton:  "btn btn-outline-secondary px-4",
		dialog.ClassActions:       "d-flex justify-content-center gap-3",
	}
	cfg.Width = 64
	return cfg
}

// loadingDialog is shown between confirmation and navigation. It cannot be
// dismissed.
func loadingDialog(k Kind) dialog.Config {
	cfg := dialog.New("Eliminando...")
	cfg.Text = fmt.Sprintf("Eliminando %s, por favor espere", k.Noun)
	cfg.AllowOutsideClick = false
	cfg.AllowEscapeKey = false
	cfg.ShowConfirmButton = false
	cfg.DidOpen = func(h dialog.Handle) {
		h.ShowLoading()
	}
	return cfg
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
