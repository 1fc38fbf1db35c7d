package conv

import (
	"archive/tar"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		in   string
		want Ref
		ok   bool
	}{
		{"conv:hyper@v1.2.3", Ref{"hyper", "v1.2.3", "index.toml"}, true},
		{"conv:hyper@v1.2.3:foo/bar.toml", Ref{"hyper", "v1.2.3", "foo/bar.toml"}, true},
		{"conv:@acme/conv-ts@v0.1.0", Ref{"@acme/conv-ts", "v0.1.0", "index.toml"}, true},
		{"convention/index.toml", Ref{}, false},
		{"conv:noversion", Ref{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseRef(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseRef(%q) = %+v, %v; want %+v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestResolvePathFlattensScopedNames(t *testing.T) {
	ref, _ := ParseRef("conv:@acme/conv-ts@v0.1.0")
	p := ResolvePath("/repo", ref)
	if !strings.Contains(filepath.ToSlash(p), ".rigra/conv/@acme__conv-ts@v0.1.0/index.toml") {
		t.Errorf("ResolvePath = %q", p)
	}
}

func TestParseSource(t *testing.T) {
	src, err := ParseSource("gh:org/repo@v0.1.0")
	if err != nil {
		t.Fatal(err)
	}
	if src.Owner != "org" || src.Repo != "repo" || src.Tag != "v0.1.0" || !src.isGithub() {
		t.Errorf("gh source = %+v", src)
	}
	src, err = ParseSource("file:/tmp/a.tar.gz")
	if err != nil {
		t.Fatal(err)
	}
	if src.File != "/tmp/a.tar.gz" || src.isGithub() {
		t.Errorf("file source = %+v", src)
	}
	for _, bad := range []string{"http://x", "gh:org@v1", "gh:org/repo"} {
		if _, err := ParseSource(bad); err == nil {
			t.Errorf("ParseSource(%q) should fail", bad)
		}
	}
}

// tarball builds a gzipped tar with a single leading directory, the shape
// GitHub tag archives have.
func tarball(t *testing.T, entries map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(zw)
	for name, content := range entries {
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}
		if strings.HasSuffix(name, "/") {
			hdr.Typeflag = tar.TypeDir
			hdr.Size = 0
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if hdr.Typeflag != tar.TypeDir {
			if _, err := tw.Write([]byte(content)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(t.TempDir(), "archive.tar.gz")
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestInstallFromLocalTarball(t *testing.T) {
	root := t.TempDir()
	tgz := tarball(t, map[string]string{
		"conv-v0.1.0/":                "",
		"conv-v0.1.0/index.toml":      "# idx",
		"conv-v0.1.0/nested/file.txt": "data",
	})
	dest, err := Install(context.Background(), root, "myconv@v0.1.0", "file:"+tgz)
	if err != nil {
		t.Fatal(err)
	}
	for _, rel := range []string{"index.toml", "nested/file.txt"} {
		if _, err := os.Stat(filepath.Join(dest, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing %s after install: %v", rel, err)
		}
	}
	// installing again over an existing cache entry is a no-op
	if _, err := Install(context.Background(), root, "myconv@v0.1.0", "file:/does/not/exist.tar.gz"); err != nil {
		t.Errorf("second install should short-circuit: %v", err)
	}
}

func TestInstallDotPrefixedTarball(t *testing.T) {
	// tar -czf x.tar.gz . names every entry ./...; the dot is the one
	// component to strip.
	root := t.TempDir()
	tgz := tarball(t, map[string]string{
		"./":                "",
		"./index.toml":      "# idx",
		"./nested/":         "",
		"./nested/file.txt": "data",
	})
	dest, err := Install(context.Background(), root, "dotconv@v1", "file:"+tgz)
	if err != nil {
		t.Fatal(err)
	}
	for _, rel := range []string{"index.toml", "nested/file.txt"} {
		if _, err := os.Stat(filepath.Join(dest, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing %s after install: %v", rel, err)
		}
	}
}

func TestInstallRejectsEscapingEntries(t *testing.T) {
	root := t.TempDir()
	tgz := tarball(t, map[string]string{
		"conv/../../evil.txt": "x",
	})
	if _, err := Install(context.Background(), root, "evil@v1", "file:"+tgz); err == nil {
		t.Errorf("entry escaping the destination should be rejected")
	}
}

func TestListAndPrune(t *testing.T) {
	root := t.TempDir()
	ref, _ := ParseRef("conv:hx@v0")
	p := ResolvePath(root, ref)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("# index"), 0o644); err != nil {
		t.Fatal(err)
	}
	got := List(root)
	if len(got) != 1 || got[0] != "hx@v0" {
		t.Errorf("List = %v", got)
	}
	if err := Prune(root); err != nil {
		t.Fatal(err)
	}
	if got := List(root); len(got) != 0 {
		t.Errorf("List after prune = %v", got)
	}
}
