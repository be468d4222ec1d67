package snapcache_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dalemusser/folio/internal/app/store/snapcache"
	"github.com/dalemusser/folio/internal/app/system/docstore"
	"github.com/google/go-cmp/cmp"
)

type skill struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

func openCache(t *testing.T) *snapcache.Store {
	t.Helper()
	s, err := snapcache.Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustDoc(t *testing.T, id, name string) docstore.Document {
	t.Helper()
	d, err := docstore.NewDocument(id, skill{Name: name})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestStore_LoadMissing(t *testing.T) {
	s := openCache(t)
	docs, ok, err := s.Load(context.Background(), "skills")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ok || docs != nil {
		t.Errorf("Load() = %v, %v; want nothing", docs, ok)
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := openCache(t)
	ctx := context.Background()

	in := []docstore.Document{mustDoc(t, "go", "Go"), mustDoc(t, "react", "React")}
	if err := s.Save(ctx, "skills", in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, ok, err := s.Load(ctx, "skills")
	if err != nil || !ok {
		t.Fatalf("Load() = ok %v, err %v", ok, err)
	}

	var names []string
	for _, d := range out {
		var sk skill
		if err := d.Decode(&sk); err != nil {
			t.Fatal(err)
		}
		if sk.ID != d.ID {
			t.Errorf("document id %q does not match decoded _id %q", d.ID, sk.ID)
		}
		names = append(names, sk.Name)
	}
	if diff := cmp.Diff([]string{"Go", "React"}, names); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}

	if _, ok, _ := s.SavedAt(ctx, "skills"); !ok {
		t.Error("SavedAt() reports no save")
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	s := openCache(t)
	ctx := context.Background()

	if err := s.Save(ctx, "skills", []docstore.Document{mustDoc(t, "go", "Go")}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "skills", []docstore.Document{}); err != nil {
		t.Fatal(err)
	}

	out, ok, err := s.Load(ctx, "skills")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("empty snapshot should still be cached")
	}
	if len(out) != 0 {
		t.Errorf("Load() returned %d docs, want 0", len(out))
	}
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	s, err := snapcache.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "config/siteConfig", []docstore.Document{mustDoc(t, "siteConfig", "x")}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := snapcache.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	out, ok, err := s2.Load(ctx, "config/siteConfig")
	if err != nil || !ok || len(out) != 1 {
		t.Fatalf("Load() after reopen = %v, %v, %v", out, ok, err)
	}
}

func TestStore_Clear(t *testing.T) {
	s := openCache(t)
	ctx := context.Background()
	if err := s.Save(ctx, "skills", []docstore.Document{mustDoc(t, "go", "Go")}); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok, _ := s.Load(ctx, "skills"); ok {
		t.Error("snapshot survived Clear")
	}
}
