package integration_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/retiroapp/expctl/internal/cli"
	"github.com/retiroapp/expctl/internal/config"
)

const (
	pageToken  = "page-tok"
	loginToken = "login-tok"
)

// DeleteRequest records a deletion form received by the fake application
type DeleteRequest struct {
	Path  string
	Token string
}

// FakeApp mimics the gestor and expediente views of the host application
type FakeApp struct {
	Password string // when set, list pages require login
	NoToken  bool   // render list pages without a CSRF token

	mu      sync.Mutex
	deletes []DeleteRequest
	logins  int
}

// Deletes returns the deletion forms received so far
func (a *FakeApp) Deletes() []DeleteRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]DeleteRequest(nil), a.deletes...)
}

func (a *FakeApp) loggedIn(r *http.Request) bool {
	if a.Password == "" {
		return true
	}
	c, err := r.Cookie("sessionid")
	return err == nil && c.Value == "s1"
}

func (a *FakeApp) tokenInput() string {
	if a.NoToken {
		return ""
	}
	return fmt.Sprintf(`<input type="hidden" name="csrfmiddlewaretoken" value="%s">`, pageToken)
}

func (a *FakeApp) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/login/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = r.ParseForm()
			if r.PostForm.Get("csrfmiddlewaretoken") == loginToken && r.PostForm.Get("password") == a.Password {
				a.mu.Lock()
				a.logins++
				a.mu.Unlock()
				http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "s1", Path: "/"})
				http.Redirect(w, r, "/expedientes/", http.StatusFound)
				return
			}
		}
		fmt.Fprintf(w, `<html><body><form method="post">
			<input type="hidden" name="csrfmiddlewaretoken" value="%s">
			<input name="username"><input type="password" name="password"></form></body></html>`, loginToken)
	})

	mux.HandleFunc("/gestores/", func(w http.ResponseWriter, r *http.Request) {
		if !a.loggedIn(r) {
			http.Redirect(w, r, "/login/", http.StatusFound)
			return
		}
		fmt.Fprintf(w, `<html><head><title>Gestores</title></head><body>
			%s%s
			<table>
			<tr><td>Acme Corp</td><td><button onclick="confirmarEliminacion(42, 'Acme Corp')">Eliminar</button></td></tr>
			<tr><td>Ana Pérez</td><td><button onclick="confirmarEliminacion(7, 'Ana Pérez')">Eliminar</button></td></tr>
			</table></body></html>`, flash(r, "Gestor"), a.tokenInput())
	})

	mux.HandleFunc("/gestores/crear/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, createGestorPage)
	})

	mux.HandleFunc("/expedientes/", func(w http.ResponseWriter, r *http.Request) {
		if !a.loggedIn(r) {
			http.Redirect(w, r, "/login/", http.StatusFound)
			return
		}
		fmt.Fprintf(w, `<html><head><title>Expedientes</title></head><body>
			%s%s
			<a href="#" onclick="confirmarEliminacionExpediente(3, 'EXP-2024-003')">Eliminar</a>
			</body></html>`, flash(r, "Expediente"), a.tokenInput())
	})

	deleteHandler := func(list string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			_ = r.ParseForm()
			token := r.PostForm.Get("csrfmiddlewaretoken")
			a.mu.Lock()
			a.deletes = append(a.deletes, DeleteRequest{Path: r.URL.Path, Token: token})
			a.mu.Unlock()

			if token != pageToken {
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `<html><body><div class="alert alert-danger">CSRF verification failed</div></body></html>`)
				return
			}
			id := strings.TrimSuffix(r.URL.Path[strings.LastIndex(strings.TrimSuffix(r.URL.Path, "/"), "/")+1:], "/")
			http.Redirect(w, r, list+"?eliminado="+id, http.StatusFound)
		}
	}
	mux.HandleFunc("/gestores/eliminar/", deleteHandler("/gestores/"))
	mux.HandleFunc("/gestores/borrar/", deleteHandler("/gestores/"))
	mux.HandleFunc("/expedientes/eliminar/", deleteHandler("/expedientes/"))

	return mux
}

func flash(r *http.Request, noun string) string {
	id := r.URL.Query().Get("eliminado")
	if id == "" {
		return ""
	}
	return fmt.Sprintf(`<ul class="messages"><li class="success">%s %s eliminado correctamente</li></ul>`, noun, id)
}

const createGestorPage = `<html><head><title>Nuevo gestor</title></head><body>
<form method="post" action="/gestores/crear/" class="needs-validation" novalidate>
  <input type="hidden" name="csrfmiddlewaretoken" value="tok">
  <input type="text" name="rut" required maxlength="12" pattern="\d{1,2}\d{3}\d{3}-[\dkK]">
  <input type="text" name="nombre" required maxlength="100">
  <input type="email" name="email" required>
  <button type="submit">Guardar</button>
</form>
</body></html>`

// TestEnv holds the test environment setup
type TestEnv struct {
	TempDir       string
	ConfigHome    string
	App           *FakeApp
	Server        *httptest.Server
	OriginalFlags cli.GlobalOptions
}

// SetupTestEnv creates an isolated config directory and a fake application server
func SetupTestEnv(t *testing.T, app *FakeApp) *TestEnv {
	t.Helper()

	tempDir := t.TempDir()
	configHome := filepath.Join(tempDir, "config")
	if err := os.MkdirAll(configHome, 0755); err != nil {
		t.Fatalf("Failed to create config home: %v", err)
	}

	// .env files are loaded into the process environment; t.Setenv restores
	// the previous state when the test ends.
	for _, key := range []string{config.EnvServer, config.EnvUser, config.EnvPassword} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	if app == nil {
		app = &FakeApp{}
	}
	srv := httptest.NewServer(app.handler())

	return &TestEnv{
		TempDir:       tempDir,
		ConfigHome:    configHome,
		App:           app,
		Server:        srv,
		OriginalFlags: cli.GlobalOpts,
	}
}

// CleanupTestEnv stops the server and restores original settings
func CleanupTestEnv(t *testing.T, env *TestEnv) {
	t.Helper()
	env.Server.Close()
	cli.GlobalOpts = env.OriginalFlags
}

// Run executes expctl against the fake server with line prompts, feeding
// input as the user's answers
func (env *TestEnv) Run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	full := append([]string{"--config-home", env.ConfigHome, "--server", env.Server.URL, "--plain"}, args...)
	var out bytes.Buffer
	err := cli.Run(context.Background(), full, strings.NewReader(input), &out)
	return out.String(), err
}

// WriteEnvFile writes ~/.expctl/.env
func (env *TestEnv) WriteEnvFile(t *testing.T, content string) {
	t.Helper()
	dir := filepath.Join(env.ConfigHome, ".expctl")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
}

// WriteConfig writes ~/.expctl/config.yaml
func (env *TestEnv) WriteConfig(t *testing.T, content string) {
	t.Helper()
	dir := filepath.Join(env.ConfigHome, ".expctl")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}
