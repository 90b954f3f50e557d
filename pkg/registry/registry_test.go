package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/kinreport/pkg/cache"
	"github.com/matzehuels/kinreport/pkg/errors"
	"github.com/matzehuels/kinreport/pkg/kin"
)

const shortForm = `{
  "result": {
    "person": {"dni": "12345678", "nom": "JUAN", "ap": "PEREZ", "am": "GOMEZ",
               "ge": "M", "fn": "05/03/1980", "edad": "44", "dv": "7"},
    "coincidences": [
      {"tipo": "PADRE", "nom": "PEDRO", "ap": "PEREZ", "am": "RUIZ", "dni": "11111111", "ge": "M", "edad": 70},
      {"tipo": "HIJA", "nom": "ANA", "ap": "PEREZ", "am": "LOPEZ", "numDoc": "22222222", "ge": "F", "edad": ""}
    ],
    "quantity": 2
  }
}`

const longForm = `{
  "result": {
    "person": {"dni": 12345678, "nombres": "JUAN", "apellido_paterno": "PEREZ",
               "apellido_materno": "GOMEZ", "sexo": "MASCULINO", "fecha_nacimiento": "05/03/1980"},
    "coincidences": [
      {"parentesco": "TIO MATERNO", "nombres": "LUIS", "ap": "GOMEZ", "sexo": "M", "edad": null}
    ]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, c cache.Cache) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(Options{BaseURL: srv.URL, Token: "secret", Timeout: 2 * time.Second, Cache: c})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestLookupShortAliases(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/12345678" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(shortForm))
	}, nil)

	l, err := client.Lookup(context.Background(), "12345678", false)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	p := l.Principal
	if p.DNI != "12345678" || p.Name != "JUAN" || p.PaternalSurname != "PEREZ" || p.MaternalSurname != "GOMEZ" {
		t.Errorf("principal = %+v", p)
	}
	if p.Sex != kin.SexMale || p.Age == nil || *p.Age != 44 || p.BirthDate != "05/03/1980" {
		t.Errorf("principal details = %+v", p)
	}
	if p.Relation != kin.PrincipalLabel || l.CheckDigit != "7" || l.Quantity != 2 {
		t.Errorf("lookup = %+v", l)
	}

	if len(l.Relatives) != 2 {
		t.Fatalf("relatives = %d", len(l.Relatives))
	}
	if r := l.Relatives[0]; r.Relation != "PADRE" || r.Age == nil || *r.Age != 70 || r.DNI != "11111111" {
		t.Errorf("father = %+v", r)
	}
	if r := l.Relatives[1]; r.DNI != "22222222" || r.Sex != kin.SexFemale || r.Age != nil {
		t.Errorf("daughter = %+v", r)
	}
}

func TestLookupLongAliases(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(longForm))
	}, nil)

	l, err := client.Lookup(context.Background(), "12345678", false)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if l.Principal.DNI != "12345678" || l.Principal.Name != "JUAN" || l.Principal.Sex != kin.SexMale {
		t.Errorf("principal = %+v", l.Principal)
	}
	if l.Quantity != 1 {
		t.Errorf("quantity should default to the relative count, got %d", l.Quantity)
	}
	if r := l.Relatives[0]; r.Relation != "TIO MATERNO" || r.Name != "LUIS" || r.Age != nil {
		t.Errorf("relative = %+v", r)
	}
}

func TestLookupUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		}},
		{"no person", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"result": {"coincidences": []}}`))
		}},
		{"person without dni", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"result": {"person": {"nom": "JUAN"}}}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				tt.handler(w, r)
			}, nil)

			_, err := client.Lookup(context.Background(), "12345678", false)
			if !errors.Is(err, errors.ErrCodeUpstreamUnavailable) {
				t.Errorf("err = %v, want UPSTREAM_UNAVAILABLE", err)
			}
			if n := calls.Load(); n != 1 {
				t.Errorf("upstream called %d times, want exactly 1", n)
			}
		})
	}
}

func TestLookupTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client, err := New(Options{BaseURL: base})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Lookup(context.Background(), "12345678", false); !errors.Is(err, errors.ErrCodeUpstreamUnavailable) {
		t.Errorf("err = %v", err)
	}
}

func TestLookupRejectsBadDNI(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called")
	}, nil)
	if _, err := client.Lookup(context.Background(), "12ab", false); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v", err)
	}
}

func TestLookupCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(shortForm))
	}, fc)
	ctx := context.Background()

	first, err := client.Lookup(ctx, "12345678", false)
	if err != nil {
		t.Fatal(err)
	}
	second, hit, err := client.LookupWithCacheInfo(ctx, "12345678", false)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second lookup should report a cache hit")
	}
	if calls.Load() != 1 {
		t.Errorf("second lookup should hit the cache, upstream calls = %d", calls.Load())
	}
	if second.Principal.DisplayName() != first.Principal.DisplayName() || len(second.Relatives) != 2 {
		t.Errorf("cached lookup differs: %+v", second)
	}

	if _, err := client.Lookup(ctx, "12345678", true); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("refresh should bypass the cache, upstream calls = %d", calls.Load())
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New(Options{BaseURL: "ftp://registry"}); err == nil {
		t.Error("expected an error for a non-http base URL")
	}
}

func TestFlexInt(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{`42`, intPtr(42)},
		{`"42"`, intPtr(42)},
		{`" 7 "`, intPtr(7)},
		{`42.0`, intPtr(42)},
		{`""`, nil},
		{`null`, nil},
		{`"desconocido"`, nil},
		{`"NaN"`, nil},
		{`"Inf"`, nil},
		{`"-Infinity"`, nil},
		{`1e30`, nil},
		{`"1e30"`, nil},
	}
	for _, tt := range tests {
		var f flexInt
		if err := f.UnmarshalJSON([]byte(tt.in)); err != nil {
			t.Errorf("%s: %v", tt.in, err)
			continue
		}
		got := f.ptr()
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("%s: got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func intPtr(n int) *int { return &n }
