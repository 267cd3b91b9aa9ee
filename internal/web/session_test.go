package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retiroapp/expctl/internal/page"
)

// fakeApp mimics the host application's login, list and delete views.
type fakeApp struct {
	mu       sync.Mutex
	deleted  []string
	posts    []*http.Request
	password string
}

func (a *fakeApp) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = r.ParseForm()
			if r.PostForm.Get("csrfmiddlewaretoken") == "login-tok" && r.PostForm.Get("password") == a.password {
				http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "s1", Path: "/"})
				http.Redirect(w, r, "/gestores/", http.StatusFound)
				return
			}
			fmt.Fprint(w, `<html><body><div class="alert">Usuario o contraseña incorrectos</div>
				<form method="post"><input type="hidden" name="csrfmiddlewaretoken" value="login-tok">
				<input name="username"><input type="password" name="password"></form></body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body><form method="post"><input type="hidden" name="csrfmiddlewaretoken" value="login-tok">
			<input name="username"><input type="password" name="password"></form></body></html>`)
	})
	mux.HandleFunc("/gestores/", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("sessionid")
		if err != nil || c.Value != "s1" {
			http.Redirect(w, r, "/login/", http.StatusFound)
			return
		}
		fmt.Fprint(w, `<html><head><title>Gestores</title></head><body>
			<ul class="messages"><li>listado</li></ul>
			<input type="hidden" name="csrfmiddlewaretoken" value="page-tok"></body></html>`)
	})
	mux.HandleFunc("/gestores/eliminar/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		_ = r.ParseForm()
		a.mu.Lock()
		a.posts = append(a.posts, r)
		a.deleted = append(a.deleted, r.URL.Path)
		a.mu.Unlock()
		if r.PostForm.Get("csrfmiddlewaretoken") != "page-tok" {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `<html><body><h1>Forbidden (403)</h1></body></html>`)
			return
		}
		http.Redirect(w, r, "/gestores/", http.StatusFound)
	})
	return mux
}

func newTestSession(t *testing.T, app *fakeApp) (*Session, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(app.handler())
	t.Cleanup(srv.Close)

	s, err := NewSession(Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return s, srv
}

func TestNewSessionRejectsRelativeURL(t *testing.T) {
	_, err := NewSession(Options{BaseURL: "/gestores/"})
	assert.Error(t, err)
}

func TestLoginKeepsSessionCookie(t *testing.T) {
	app := &fakeApp{password: "secreto"}
	s, _ := newTestSession(t, app)
	ctx := context.Background()

	landing, err := s.Login(ctx, "ana", "secreto")
	require.NoError(t, err)
	assert.Equal(t, "/gestores/", landing.URL.Path)

	doc, err := s.Fetch(ctx, "/gestores/")
	require.NoError(t, err)
	assert.Equal(t, "Gestores", doc.Title())
}

func TestLoginFailure(t *testing.T) {
	app := &fakeApp{password: "secreto"}
	s, _ := newTestSession(t, app)

	_, err := s.Login(context.Background(), "ana", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoginFailed))
	assert.Contains(t, err.Error(), "Usuario o contraseña incorrectos")
}

func TestSubmitPostsFormAndFollowsRedirect(t *testing.T) {
	app := &fakeApp{password: "secreto"}
	s, srv := newTestSession(t, app)
	ctx := context.Background()

	_, err := s.Login(ctx, "ana", "secreto")
	require.NoError(t, err)
	doc, err := s.Fetch(ctx, "/gestores/")
	require.NoError(t, err)

	form := page.NewPostForm("/gestores/eliminar/42/")
	form.AddHidden(page.DefaultTokenField, "page-tok")

	landing, err := s.Submit(ctx, doc, form)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, landing.StatusCode)
	assert.Equal(t, "/gestores/", landing.URL.Path)

	require.Len(t, app.posts, 1)
	post := app.posts[0]
	assert.Equal(t, "/gestores/eliminar/42/", post.URL.Path)
	assert.Equal(t, "application/x-www-form-urlencoded", post.Header.Get("Content-Type"))
	assert.Equal(t, srv.URL+"/gestores/", post.Header.Get("Referer"))
	assert.NotEmpty(t, post.Header.Get("X-Request-ID"))
	assert.Equal(t, []string{"page-tok"}, post.PostForm["csrfmiddlewaretoken"])
}

func TestSubmitReturnsErrorPage(t *testing.T) {
	app := &fakeApp{password: "secreto"}
	s, _ := newTestSession(t, app)

	form := page.NewPostForm("/gestores/eliminar/42/")
	form.AddHidden(page.DefaultTokenField, "stale")

	landing, err := s.Submit(context.Background(), nil, form)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, landing.StatusCode)
	assert.Equal(t, "Forbidden (403)", landing.Find("h1").Text())
}
