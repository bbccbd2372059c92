package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "players.csv", "id,name,skill\n1,alice,1500\n2,bob,1480.5\n3,carol,1620\n")

	ds, err := NewFileLoader(nil).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(ds.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(ds.Records))
	}
	if ds.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", ds.SchemaVersion, SchemaVersion)
	}
	if ds.Origin != path {
		t.Errorf("Origin = %q, want %q", ds.Origin, path)
	}

	// Numeric columns parse as floats, text stays string.
	if skill, ok := ds.Records[1].Float("skill"); !ok || skill != 1480.5 {
		t.Errorf("skill = %v %v, want 1480.5", skill, ok)
	}
	if name := ds.Records[0].String("name"); name != "alice" {
		t.Errorf("name = %q, want alice", name)
	}
}

func TestLoadCSVRaggedRow(t *testing.T) {
	path := writeFile(t, "ragged.csv", "id,skill\n1,1500\n2\n")

	_, err := NewFileLoader(nil).Load(context.Background(), path)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("err = %v, want ErrSchemaMismatch", err)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "players.json", `[{"id": 1, "skill": 1500}, {"id": 2, "skill": 1620}]`)

	ds, err := NewFileLoader(nil).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(ds.Records))
	}
	// Field order is sorted for stability.
	if len(ds.Fields) != 2 || ds.Fields[0] != "id" || ds.Fields[1] != "skill" {
		t.Errorf("Fields = %v, want [id skill]", ds.Fields)
	}
}

func TestLoadJSONSchemaMismatch(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing_field", `[{"id": 1, "skill": 1500}, {"id": 2}]`},
		{"extra_field", `[{"id": 1}, {"id": 2, "skill": 1500}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.json", tt.content)
			_, err := NewFileLoader(nil).Load(context.Background(), path)
			if !errors.Is(err, ErrSchemaMismatch) {
				t.Errorf("err = %v, want ErrSchemaMismatch", err)
			}
		})
	}
}

func TestLoadUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		origin string
	}{
		{"empty", ""},
		{"missing_file", filepath.Join(t.TempDir(), "nope.csv")},
		{"unknown_form", "players.parquet"},
		{"invalid_json", ""}, // origin filled below
	}
	tests[3].origin = writeFile(t, "invalid.json", `{"not": "an array"}`)

	loader := NewFileLoader(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load(context.Background(), tt.origin)
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("err = %v, want ErrUnavailable", err)
			}
		})
	}
}

func TestLoadGaussDeterministic(t *testing.T) {
	loader := NewFileLoader(nil)
	origin := "gauss:players=50,mean=1500,stddev=200,seed=7"

	a, err := loader.Load(context.Background(), origin)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b, err := loader.Load(context.Background(), origin)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(a.Records) != 50 {
		t.Fatalf("records = %d, want 50", len(a.Records))
	}
	// Same seed, same roster, same fingerprint.
	if a.ID != b.ID {
		t.Errorf("IDs differ: %q vs %q", a.ID, b.ID)
	}
	for i := range a.Records {
		as, _ := a.Records[i].Float("skill")
		bs, _ := b.Records[i].Float("skill")
		if as != bs {
			t.Fatalf("record %d skill differs: %v vs %v", i, as, bs)
		}
	}

	// A different seed changes the fingerprint.
	c, err := loader.Load(context.Background(), "gauss:players=50,mean=1500,stddev=200,seed=8")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a.ID == c.ID {
		t.Error("different seeds produced identical dataset IDs")
	}
}

func TestLoadGaussBadParams(t *testing.T) {
	loader := NewFileLoader(nil)
	for _, origin := range []string{
		"gauss:",
		"gauss:mean=1500",
		"gauss:players=0",
		"gauss:players=-5",
		"gauss:players=abc",
		"gauss:players=10,window=3",
	} {
		if _, err := loader.Load(context.Background(), origin); !errors.Is(err, ErrUnavailable) {
			t.Errorf("%q: err = %v, want ErrUnavailable", origin, err)
		}
	}
}

func TestLoadHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 1, "skill": 1500}]`))
	}))
	defer srv.Close()

	ds, err := NewFileLoader(nil).Load(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Records) != 1 {
		t.Errorf("records = %d, want 1", len(ds.Records))
	}
}

func TestLoadHTTPFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/slow":
			time.Sleep(200 * time.Millisecond)
		default:
			w.Header().Set("Content-Type", "application/octet-stream")
		}
	}))
	defer srv.Close()

	loader := NewFileLoader(nil)
	loader.HTTPTimeout = 50 * time.Millisecond

	for _, path := range []string{"/missing", "/slow", "/unknown-format"} {
		if _, err := loader.Load(context.Background(), srv.URL+path); !errors.Is(err, ErrUnavailable) {
			t.Errorf("%s: err = %v, want ErrUnavailable", path, err)
		}
	}
}

func TestFingerprintTracksContent(t *testing.T) {
	path := writeFile(t, "players.csv", "id,skill\n1,1500\n")
	loader := NewFileLoader(nil)

	a, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("id,skill\n1,1600\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID {
		t.Error("content change did not change the dataset ID")
	}
}
