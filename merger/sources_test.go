package merger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"arxmerge/fragment"
)

func uris(sources []fragment.Source) []string {
	res := make([]string, 0, len(sources))
	for _, s := range sources {
		res = append(res, s.URI)
	}
	return res
}

func TestSources(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "model/ecu10.arxml", []byte(typesFragment))
	b := writeFile(t, dir, "model/ecu2.arxml", []byte(usersFragment))
	writeFile(t, dir, "model/readme.txt", []byte("readme"))
	writeFile(t, dir, "model/bogus.arxml", []byte("<FictionBook/>"))
	z := writeZip(t, filepath.Join(dir, "model", "sub", "pack.zip"),
		"x/b.arxml", usersFragment,
		"x/a.arxml", typesFragment,
		"notes.txt", "notes")

	opts := fragment.DefaultLoadOptions()

	t.Run("directory", func(t *testing.T) {
		sources, err := Sources(context.Background(), []string{filepath.Join(dir, "model")}, opts, true, nil, testLogger(t))
		if err != nil {
			t.Fatalf("Sources: %v", err)
		}
		want := []string{
			fragment.FileURI(b),
			fragment.FileURI(a),
			fragment.ArchiveURI(z, "x/a.arxml"),
			fragment.ArchiveURI(z, "x/b.arxml"),
		}
		if got := uris(sources); strings.Join(got, "\n") != strings.Join(want, "\n") {
			t.Errorf("sources = %v, want %v", got, want)
		}
	})

	t.Run("directory without archives", func(t *testing.T) {
		sources, err := Sources(context.Background(), []string{filepath.Join(dir, "model")}, opts, false, nil, testLogger(t))
		if err != nil {
			t.Fatalf("Sources: %v", err)
		}
		if len(sources) != 2 {
			t.Errorf("sources = %v, want 2", uris(sources))
		}
	})

	t.Run("argument order and duplicates", func(t *testing.T) {
		sources, err := Sources(context.Background(), []string{a, b, a}, opts, true, nil, testLogger(t))
		if err != nil {
			t.Fatalf("Sources: %v", err)
		}
		want := []string{fragment.FileURI(a), fragment.FileURI(b)}
		if got := uris(sources); strings.Join(got, "\n") != strings.Join(want, "\n") {
			t.Errorf("sources = %v, want %v", got, want)
		}
	})

	t.Run("path inside archive", func(t *testing.T) {
		sources, err := Sources(context.Background(), []string{filepath.Join(z, "x", "b.arxml")}, opts, true, nil, testLogger(t))
		if err != nil {
			t.Fatalf("Sources: %v", err)
		}
		if len(sources) != 1 || sources[0].URI != fragment.ArchiveURI(z, "x/b.arxml") {
			t.Fatalf("sources = %v", uris(sources))
		}
		r, err := sources[0].Open()
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("ReadAll: %v", err)
		}
		if string(data) != usersFragment {
			t.Error("unexpected archived content")
		}
	})

	t.Run("errors", func(t *testing.T) {
		for _, args := range [][]string{
			nil,
			{filepath.Join(dir, "missing.arxml")},
			{filepath.Join(dir, "model", "readme.txt")},
			{filepath.Join(dir, "model", "ecu2.arxml", "inner")},
			{filepath.Join(z, "nothing")},
		} {
			if _, err := Sources(context.Background(), args, opts, true, nil, testLogger(t)); err == nil {
				t.Errorf("Sources(%v): expected error", args)
			}
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := Sources(ctx, []string{dir}, opts, true, nil, testLogger(t)); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}

func TestSourcesDamagedArchive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "model/a.arxml", []byte(typesFragment))
	good := writeZip(t, filepath.Join(t.TempDir(), "good.zip"), "b.arxml", usersFragment)
	data, err := os.ReadFile(good)
	if err != nil {
		t.Fatalf("Failed to read zip: %v", err)
	}
	// keeps zip signature, loses central directory
	writeFile(t, dir, "model/b.zip", data[:16])

	if _, err := Sources(context.Background(), []string{filepath.Join(dir, "model")}, fragment.DefaultLoadOptions(), true, nil, testLogger(t)); err == nil {
		t.Fatal("expected error for damaged archive in directory")
	} else if !strings.Contains(err.Error(), "b.zip") {
		t.Errorf("error should name damaged archive: %v", err)
	}

	// without archive support the file is neither archive nor fragment
	sources, err := Sources(context.Background(), []string{filepath.Join(dir, "model")}, fragment.DefaultLoadOptions(), false, nil, testLogger(t))
	if err != nil {
		t.Fatalf("Sources without archives: %v", err)
	}
	if len(sources) != 1 {
		t.Errorf("expected 1 source, got %d", len(sources))
	}
}

func TestSourcesDecodeBOM(t *testing.T) {
	dir := t.TempDir()
	declared := strings.Replace(typesFragment, `encoding="UTF-8"`, `encoding="UTF-16"`, 1)
	path := writeFile(t, dir, "wide.arxml", encode(t, declared, encUTF16LittleEndian))

	sources, err := Sources(context.Background(), []string{path}, fragment.DefaultLoadOptions(), true, nil, testLogger(t))
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if !sources[0].UTF8 {
		t.Error("decoded source must be marked as UTF-8")
	}
	set, err := fragment.Load(context.Background(), sources, fragment.DefaultLoadOptions(), 1, testLogger(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := set.Fragments()[0].Tree.Lookup("/Demo/uint8"); !ok {
		t.Error("/Demo/uint8 not found in decoded fragment")
	}
}
