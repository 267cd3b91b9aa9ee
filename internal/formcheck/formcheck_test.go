package formcheck

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retiroapp/expctl/internal/page"
)

const createGestorPage = `<html><body>
<form method="post" action="/gestores/crear/" class="needs-validation" novalidate>
  <input type="hidden" name="csrfmiddlewaretoken" value="tok">
  <input type="text" name="rut" required maxlength="12" pattern="\d{1,2}\d{3}\d{3}-[\dkK]">
  <input type="text" name="nombre" required maxlength="100">
  <input type="text" name="apellido" required maxlength="100">
  <input type="email" name="email" required>
  <input type="number" name="edad" required min="18" max="65">
  <button type="submit">Guardar</button>
</form>
<form method="get" action="/gestores/">
  <input type="text" name="query" required>
</form>
</body></html>`

func loadPage(t *testing.T, html string) *page.Document {
	t.Helper()
	doc, err := page.LoadString(html, "")
	require.NoError(t, err)
	return doc
}

func validGestor() url.Values {
	return url.Values{
		"rut":      {"12345678-9"},
		"nombre":   {"Ana"},
		"apellido": {"Pérez"},
		"email":    {"ana@example.cl"},
		"edad":     {"40"},
	}
}

func TestInitBindsOnlyTaggedForms(t *testing.T) {
	doc := loadPage(t, createGestorPage)

	forms := Init(doc)
	require.Len(t, forms, 1)
	assert.Equal(t, "/gestores/crear/", forms[0].Action())
	assert.Equal(t, "POST", forms[0].Method())
	assert.False(t, forms[0].Validated())
}

func TestSubmitInvalidFormIsPrevented(t *testing.T) {
	doc := loadPage(t, createGestorPage)
	form := Init(doc)[0]

	values := validGestor()
	values.Del("nombre")
	sub := form.Submit(values)

	assert.False(t, sub.Submitted)
	assert.Nil(t, sub.Form)
	require.Len(t, sub.Violations, 1)
	assert.Equal(t, "nombre", sub.Violations[0].Field)
	assert.Equal(t, ValueMissing, sub.Violations[0].Constraint)
	assert.True(t, form.Validated())
	assert.Equal(t, 1, doc.Find("form.was-validated").Length())
}

func TestSubmitValidForm(t *testing.T) {
	doc := loadPage(t, createGestorPage)
	form := Init(doc)[0]

	sub := form.Submit(validGestor())

	assert.True(t, sub.Submitted)
	assert.Empty(t, sub.Violations)
	require.NotNil(t, sub.Form)
	assert.Equal(t, "/gestores/crear/", sub.Form.Action)
	v := sub.Form.Values()
	assert.Equal(t, "tok", v.Get("csrfmiddlewaretoken"))
	assert.Equal(t, "12345678-9", v.Get("rut"))
	assert.Equal(t, "ana@example.cl", v.Get("email"))
	assert.True(t, form.Validated())
}

func TestValidatedMarkerIsKept(t *testing.T) {
	doc := loadPage(t, createGestorPage)
	form := Init(doc)[0]

	form.Submit(url.Values{})
	form.Submit(validGestor())
	assert.True(t, form.Validated())
}

func TestConstraintViolations(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		value      string
		constraint string
	}{
		{"bad rut", "rut", "12.345.678-9", PatternMismatch},
		{"rut too long", "rut", "1234567890123", TooLong},
		{"bad email", "email", "ana@", TypeMismatch},
		{"age is NaN", "edad", "NaN", ValueMissing},
		{"age is infinite", "edad", "Inf", ValueMissing},
		{"age in hex", "edad", "0x20", ValueMissing},
		{"age with plus sign", "edad", "+30", ValueMissing},
		{"age out of float range", "edad", "1e400", ValueMissing},
		{"age too low", "edad", "17", RangeUnderflow},
		{"age too high in exponent form", "edad", "1e2", RangeOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := Init(loadPage(t, createGestorPage))[0]
			values := validGestor()
			values.Set(tt.field, tt.value)

			violations := form.CheckValidity(values)
			require.NotEmpty(t, violations)
			found := false
			for _, v := range violations {
				if v.Field == tt.field && v.Constraint == tt.constraint {
					found = true
				}
			}
			assert.True(t, found, "expected %s on %s, got %v", tt.constraint, tt.field, violations)
		})
	}
}

func TestNumberGrammar(t *testing.T) {
	for _, value := range []string{"40", "4e1", "40.0", ".4e2", "-40e-0"} {
		form := Init(loadPage(t, createGestorPage))[0]
		values := validGestor()
		values.Set("edad", value)

		violations := form.CheckValidity(values)
		if value == "-40e-0" {
			require.Len(t, violations, 1, value)
			assert.Equal(t, RangeUnderflow, violations[0].Constraint)
			continue
		}
		assert.Empty(t, violations, value)
	}
}

func TestSanitizedNumberIsNotSubmitted(t *testing.T) {
	html := `<html><body><form class="needs-validation" method="post">
		<input type="number" name="hijos">
		<input type="range" name="nivel" min="0" max="10" value="abc">
	</form></body></html>`
	form := Init(loadPage(t, html))[0]

	sub := form.Submit(url.Values{"hijos": {"NaN"}})
	require.True(t, sub.Submitted)
	v := sub.Form.Values()
	assert.Equal(t, "", v.Get("hijos"))
	assert.Equal(t, "5", v.Get("nivel"))
}

func TestSelectMultiple(t *testing.T) {
	html := `<html><body><form class="needs-validation" method="post">
		<select name="docs" multiple required>
			<option value="a">Cédula</option>
			<option value="b">Certificado</option>
			<option value="c">Liquidación</option>
		</select>
	</form></body></html>`

	form := Init(loadPage(t, html))[0]
	sub := form.Submit(url.Values{})
	assert.False(t, sub.Submitted)
	require.Len(t, sub.Violations, 1)
	assert.Equal(t, "docs", sub.Violations[0].Field)
	assert.Equal(t, ValueMissing, sub.Violations[0].Constraint)

	sub = form.Submit(url.Values{"docs": {"a", "c", "z"}})
	require.True(t, sub.Submitted)
	assert.Equal(t, []string{"a", "c"}, sub.Form.Values()["docs"])
}

func TestSelectMultiplePreselected(t *testing.T) {
	html := `<html><body><form class="needs-validation" method="post">
		<select name="docs" multiple required>
			<option value="a" selected>Cédula</option>
			<option value="b">Certificado</option>
			<option value="c" selected>Liquidación</option>
		</select>
	</form></body></html>`

	sub := Init(loadPage(t, html))[0].Submit(url.Values{})
	require.True(t, sub.Submitted)
	assert.Equal(t, []string{"a", "c"}, sub.Form.Values()["docs"])
}

func TestExpedienteConstraints(t *testing.T) {
	html := `<html><body><form class="needs-validation" method="post">
		<input type="text" name="titulo" required minlength="3">
		<input type="date" name="fecha_vencimiento" required min="2024-01-01">
		<select name="estado_expediente" required>
			<option value="">---------</option>
			<option value="activo">Activo</option>
			<option value="inactivo">Inactivo</option>
		</select>
		<input type="number" name="calificacion" min="0" max="10">
		<textarea name="observaciones" maxlength="5"></textarea>
		<input type="radio" name="tipo" value="vejez" required>
		<input type="radio" name="tipo" value="invalidez">
		<input type="checkbox" name="acepto" required>
		<input type="text" name="bloqueado" required disabled>
	</form></body></html>`
	form := Init(loadPage(t, html))[0]

	violations := form.CheckValidity(url.Values{
		"titulo":            {"ab"},
		"fecha_vencimiento": {"2023-12-31"},
		"calificacion":      {"11"},
		"observaciones":     {"demasiado"},
	})
	got := map[string]string{}
	for _, v := range violations {
		got[v.Field] = v.Constraint
	}
	assert.Equal(t, map[string]string{
		"titulo":            TooShort,
		"fecha_vencimiento": RangeUnderflow,
		"estado_expediente": ValueMissing,
		"calificacion":      RangeOverflow,
		"observaciones":     TooLong,
		"tipo":              ValueMissing,
		"acepto":            ValueMissing,
	}, got)

	violations = form.CheckValidity(url.Values{
		"titulo":            {"Pensión"},
		"fecha_vencimiento": {"2030-06-30"},
		"estado_expediente": {"activo"},
		"calificacion":      {"7"},
		"tipo":              {"invalidez"},
		"acepto":            {"on"},
	})
	assert.Empty(t, violations)
}

func TestFocusFirst(t *testing.T) {
	doc := loadPage(t, `<html><body>
		<input type="hidden" name="csrfmiddlewaretoken" value="tok">
		<div hidden><input name="oculto"></div>
		<input name="invisible" style="display: none">
		<select name="estado"><option>a</option></select>
		<input name="nombre">
	</body></html>`)

	sel, ok := FocusFirst(doc)
	require.True(t, ok)
	name, _ := sel.Attr("name")
	assert.Equal(t, "estado", name)

	focused := doc.Find("[autofocus]")
	require.Equal(t, 1, focused.Length())
	name, _ = focused.Attr("name")
	assert.Equal(t, "estado", name)
}

func TestFocusFirstWithoutFields(t *testing.T) {
	doc := loadPage(t, `<html><body><input type="hidden" name="t" value="x"><p>nada</p></body></html>`)

	sel, ok := FocusFirst(doc)
	assert.False(t, ok)
	assert.Nil(t, sel)
	assert.Equal(t, 0, doc.Find("[autofocus]").Length())
}
