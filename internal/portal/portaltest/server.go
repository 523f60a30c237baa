// Package portaltest provides an in-process fake of the Itaú Link portal
// for tests.
package portaltest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Credentials accepted by the fake login.
const (
	Username = "12345678"
	Password = "secret"
)

// Session cookie issued on the first redirect of the second login step.
const (
	SessionCookie = "JSESSIONID"
	SessionValue  = "sess-abc"
)

// DefaultListing is the account listing embedded in the landing page unless
// Landing is replaced.
const DefaultListing = `{"cuentas": {
  "caja_de_ahorro": [{"idCuenta": "2004005", "nombreTitular": "MARIA", "hash": "h1", "saldo": 1000, "tipoCuenta": "2", "moneda": "URGP", "nota": "linea1\nlinea2"}]
}}`

// LandingPage renders a home page embedding listing the way the portal does.
func LandingPage(listing string) string {
	return "<html><head><script>\nvar mensajeUsuario = JSON.parse('" + listing +
		"');\nvar otro = 1;\n</script></head><body>Bienvenido</body></html>"
}

// Server is a fake portal. Exported fields must be set before the first
// request.
type Server struct {
	*httptest.Server

	// Landing is the body served after a successful login.
	Landing string
	// Delay is applied to every statement request.
	Delay time.Duration
	// NoSessionCookie makes the login redirect set no cookie and the home
	// page skip its session check.
	NoSessionCookie bool

	mu         sync.Mutex
	payloads   map[string]string
	statements map[string]string
	hangUp     map[string]bool

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

// NewServer starts a fake portal that is closed when t finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		Landing:    LandingPage(DefaultListing),
		payloads:   make(map[string]string),
		statements: make(map[string]string),
		hangUp:     make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/appl/servlet/FeaServlet", s.login)
	mux.HandleFunc("/trx/loginParalelo", s.secondLogin)
	mux.HandleFunc("/trx/home", s.home)
	mux.HandleFunc("/trx/cuentas/", s.statement)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// SetStatement serves body for requests to path.
func (s *Server) SetStatement(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statements[path] = body
}

// HangUp makes requests to path fail by closing the connection.
func (s *Server) HangUp(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hangUp[path] = true
}

// Payload returns the last body received on path.
func (s *Server) Payload(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payloads[path]
}

// MaxInFlight returns the highest number of concurrent statement requests seen.
func (s *Server) MaxInFlight() int32 {
	return s.maxInFlight.Load()
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.ParseForm() != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	f := r.PostForm
	if f.Get("nro_documento") != Username || f.Get("pass") != Password ||
		f.Get("password") != Password || f.Get("segmento") != "panelPersona" {
		fmt.Fprint(w, `<html><body>Usuario o clave incorrectos</body></html>`)
		return
	}
	fmt.Fprint(w, `<html><body onload="document.forms[0].submit()">
<form method="post" action="/trx/loginParalelo">
<input type="hidden" name="token" value="tok-1">
<input type="hidden" name="nro_documento" value="`+Username+`">
</form></body></html>`)
}

func (s *Server) secondLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.ParseForm() != nil || r.PostForm.Get("token") != "tok-1" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if !s.NoSessionCookie {
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: SessionValue, Path: "/"})
	}
	http.Redirect(w, r, "/trx/home", http.StatusFound)
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	if !s.NoSessionCookie && !hasSession(r) {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}
	// Cookies on the final response are not part of the session.
	http.SetCookie(w, &http.Cookie{Name: "tracking", Value: "late", Path: "/"})
	fmt.Fprint(w, s.Landing)
}

func (s *Server) statement(w http.ResponseWriter, r *http.Request) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		max := s.maxInFlight.Load()
		if n <= max || s.maxInFlight.CompareAndSwap(max, n) {
			break
		}
	}
	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}

	body, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.payloads[r.URL.Path] = string(body)
	resp, ok := s.statements[r.URL.Path]
	hangUp := s.hangUp[r.URL.Path]
	s.mu.Unlock()

	if !hasSession(r) {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}
	if hangUp {
		if conn, _, err := w.(http.Hijacker).Hijack(); err == nil {
			conn.Close()
		}
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, resp)
}

func hasSession(r *http.Request) bool {
	c, err := r.Cookie(SessionCookie)
	return err == nil && c.Value == SessionValue
}

// Movements renders a statement body listing records under key, which is
// "movimientosHistoricos" or "movimientosMesActual".
func Movements(key string, records ...string) string {
	return fmt.Sprintf(`{"itaulink_msg": {"data": {%q: {"movimientos": [%s]}}}}`, key, strings.Join(records, ","))
}

// Record renders one raw movement.
func Record(tipo, desc string, y, m, d int) string {
	return fmt.Sprintf(`{"tipo": %q, "descripcion": %q, "descripcionAdicional": "", "importe": 10.5, "saldo": 100, "fecha": {"year": %d, "monthOfYear": %d, "dayOfMonth": %d}}`,
		tipo, desc, y, m, d)
}
