package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dgraph-io/badger/v3"
	"github.com/gomodule/redigo/redis"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	s := Static{{Key: 1, Value: "Alice"}, {Key: 2, Value: "Bob"}}

	pairs, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Pair{{Key: 1, Value: "Alice"}, {Key: 2, Value: "Bob"}}, pairs)

	pairs[0].Value = "changed"
	again, _ := s.FetchAll(context.Background())
	assert.Equal(t, "Alice", again[0].Value, "callers must not alias the static slice")
}

func TestLoaderFunc(t *testing.T) {
	wantErr := errors.New("db down")
	l := LoaderFunc(func(context.Context) ([]Pair, error) { return nil, wantErr })

	_, err := l.FetchAll(context.Background())
	assert.ErrorIs(t, err, wantErr)
}

func TestResolver(t *testing.T) {
	employees := Static{{Key: 1, Value: "Alice"}}
	products := Static{{Key: "p1", Value: "Widget"}}

	r := NewResolver()
	_, err := r.Resolve("dept-a")
	assert.ErrorIs(t, err, ErrNoLoader)

	r.Bind("catalog", products)
	got, err := r.Resolve("catalog")
	require.NoError(t, err)
	assert.Equal(t, products, got)

	_, err = r.Resolve("dept-a")
	assert.ErrorIs(t, err, ErrNoLoader)

	r.SetDefault(employees)
	got, err = r.Resolve("dept-a")
	require.NoError(t, err)
	assert.Equal(t, employees, got)

	got, err = r.Resolve("catalog")
	require.NoError(t, err)
	assert.Equal(t, products, got, "explicit bindings win over the default")
}

func TestResolverBindNil(t *testing.T) {
	products := Static{{Key: "p1", Value: "Widget"}}

	r := NewResolver().Bind("catalog", nil)
	_, err := r.Resolve("catalog")
	assert.ErrorIs(t, err, ErrNoLoader)

	r.Bind("catalog", products).Bind("catalog", nil)
	_, err = r.Resolve("catalog")
	assert.ErrorIs(t, err, ErrNoLoader, "binding nil removes the earlier binding")

	r.SetDefault(products)
	got, err := r.Resolve("catalog")
	require.NoError(t, err)
	assert.Equal(t, products, got)
}

func TestParseHCLSeed(t *testing.T) {
	pairs, err := ParseHCLSeed([]byte(`
entry "1" {
  value = "Alice"
}
entry "2" {
  value = "Bob"
}
entry "3" {
  value = {
    name  = "Carol"
    age   = 41
    tags  = ["ops", "oncall"]
    admin = true
    score = 1.5
  }
}
`), "seed.hcl")
	require.NoError(t, err)

	want := []Pair{
		{Key: "1", Value: "Alice"},
		{Key: "2", Value: "Bob"},
		{Key: "3", Value: map[string]any{
			"name":  "Carol",
			"age":   int64(41),
			"tags":  []any{"ops", "oncall"},
			"admin": true,
			"score": 1.5,
		}},
	}
	if diff := cmp.Diff(want, pairs); diff != "" {
		t.Errorf("seed mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHCLSeedErrors(t *testing.T) {
	t.Run("syntax error", func(t *testing.T) {
		_, err := ParseHCLSeed([]byte(`entry "1" {`), "bad.hcl")
		assert.ErrorContains(t, err, "failed to parse HCL file bad.hcl")
	})

	t.Run("missing value", func(t *testing.T) {
		_, err := ParseHCLSeed([]byte(`entry "1" {}`), "bad.hcl")
		assert.ErrorContains(t, err, "failed to decode HCL file bad.hcl")
	})

	t.Run("null value", func(t *testing.T) {
		pairs, err := ParseHCLSeed([]byte(`entry "1" { value = null }`), "null.hcl")
		require.NoError(t, err)
		assert.Equal(t, []Pair{{Key: "1", Value: nil}}, pairs)
	})
}

func TestHCLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "employees.hcl")
	require.NoError(t, os.WriteFile(path, []byte("entry \"1\" { value = \"Alice\" }\nentry \"2\" { value = \"Bob\" }\n"), 0o644))

	pairs, err := NewHCLFile(path).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Pair{{Key: "1", Value: "Alice"}, {Key: "2", Value: "Bob"}}, pairs)

	_, err = NewHCLFile(filepath.Join(t.TempDir(), "missing.hcl")).FetchAll(context.Background())
	assert.Error(t, err)
}

func TestHCLFileDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.hcl"), []byte("entry \"2\" { value = \"Bob\" }\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte("entry \"1\" { value = \"Alice\" }\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a seed"), 0o644))

	pairs, err := NewHCLFile(dir).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Pair{{Key: "1", Value: "Alice"}, {Key: "2", Value: "Bob"}}, pairs)

	empty, err := NewHCLFile(t.TempDir()).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRedis(t *testing.T) {
	s := miniredis.RunT(t)
	s.HSet("employees", "2", "Bob", "1", "Alice", "3", "Carol")

	l := NewRedis(NewRedisPool(s.Addr()), "employees")
	defer l.Close()

	pairs, err := l.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Pair{
		{Key: "1", Value: "Alice"},
		{Key: "2", Value: "Bob"},
		{Key: "3", Value: "Carol"},
	}, pairs)

	t.Run("missing hash is empty", func(t *testing.T) {
		pairs, err := NewRedis(NewRedisPool(s.Addr()), "nope").FetchAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, pairs)
	})

	t.Run("wrong type", func(t *testing.T) {
		require.NoError(t, s.Set("plain", "x"))
		_, err := NewRedis(&redis.Pool{
			Dial: func() (redis.Conn, error) { return redis.Dial("tcp", s.Addr()) },
		}, "plain").FetchAll(context.Background())
		assert.ErrorContains(t, err, "redis HGETALL plain")
	})
}

func TestBadger(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		for k, v := range map[string]string{
			"employees/2": `"Bob"`,
			"employees/1": `"Alice"`,
			"employees/3": `{"name":"Carol"}`,
			"employees/4": `plain text`,
			"products/1":  `"Widget"`,
		} {
			if err := txn.Set([]byte(k), []byte(v)); err != nil {
				return err
			}
		}
		return nil
	}))

	l := NewBadger(db, "employees/")
	pairs, err := l.FetchAll(context.Background())
	require.NoError(t, err)

	want := []Pair{
		{Key: "1", Value: "Alice"},
		{Key: "2", Value: "Bob"},
		{Key: "3", Value: map[string]any{"name": "Carol"}},
		{Key: "4", Value: "plain text"},
	}
	if diff := cmp.Diff(want, pairs); diff != "" {
		t.Errorf("badger pairs mismatch (-want +got):\n%s", diff)
	}
	assert.NoError(t, l.Close(), "closing a borrowed db is a no-op")
}

func TestHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/employees":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"key":"1","value":"Alice"},{"key":"2","value":"Bob"}]`))
		case "/keyless":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"value":"Alice"}]`))
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.Run("ok", func(t *testing.T) {
		l := NewHTTP(srv.URL+"/employees", time.Second)
		defer l.Close()
		pairs, err := l.FetchAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []Pair{{Key: "1", Value: "Alice"}, {Key: "2", Value: "Bob"}}, pairs)
	})

	t.Run("status error", func(t *testing.T) {
		l := NewHTTP(srv.URL+"/missing", time.Second)
		defer l.Close()
		_, err := l.FetchAll(ctx)
		assert.ErrorIs(t, err, ErrHTTPStatus)
	})

	t.Run("element without key", func(t *testing.T) {
		l := NewHTTP(srv.URL+"/keyless", time.Second)
		defer l.Close()
		_, err := l.FetchAll(ctx)
		assert.ErrorContains(t, err, "element 0 has no key")
	})
}
