// Package conv manages the convention cache: parsing conv: references,
// resolving them to cached files under .rigra/conv, and installing
// convention bundles from GitHub release tags or local tarballs.
package conv

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Ref addresses a file inside an installed convention bundle. The textual
// form is conv:name@ver[:subpath]; scoped names like @owner/name are
// supported, so the version split happens at the last '@'. Subpath defaults
// to index.toml.
type Ref struct {
	Name    string
	Version string
	Subpath string
}

// ParseRef parses a conv: reference. The second return is false when s is
// not a conv reference or is malformed.
func ParseRef(s string) (Ref, bool) {
	body, ok := strings.CutPrefix(s, "conv:")
	if !ok {
		return Ref{}, false
	}
	nv, sub, hasSub := strings.Cut(body, ":")
	if !hasSub {
		sub = "index.toml"
	}
	at := strings.LastIndexByte(nv, '@')
	if at <= 0 {
		return Ref{}, false
	}
	return Ref{Name: nv[:at], Version: nv[at+1:], Subpath: sub}, true
}

// CacheRoot is the convention cache directory for a repository.
func CacheRoot(repoRoot string) string {
	return filepath.Join(repoRoot, ".rigra", "conv")
}

// ResolvePath locates r's subpath inside the cache. It does not check that
// the bundle is installed.
func ResolvePath(repoRoot string, r Ref) string {
	return filepath.Join(CacheRoot(repoRoot), cacheKey(r.Name, r.Version), filepath.FromSlash(r.Subpath))
}

// cache directories keep the '@' but flatten scoped name slashes.
func cacheKey(name, ver string) string {
	return strings.ReplaceAll(name, "/", "__") + "@" + ver
}

// Source is where a convention bundle comes from: a GitHub tag tarball
// (gh:owner/repo@tag) or a local tar.gz (file:/path).
type Source struct {
	Owner string
	Repo  string
	Tag   string

	File string
}

func (s Source) isGithub() bool { return s.File == "" }

func ParseSource(s string) (Source, error) {
	if rest, ok := strings.CutPrefix(s, "gh:"); ok {
		or, tag, ok := strings.Cut(rest, "@")
		if !ok {
			return Source{}, fmt.Errorf("gh source %q: missing @tag", s)
		}
		owner, repo, ok := strings.Cut(or, "/")
		if !ok {
			return Source{}, fmt.Errorf("gh source %q: expected owner/repo", s)
		}
		return Source{Owner: owner, Repo: repo, Tag: tag}, nil
	}
	if rest, ok := strings.CutPrefix(s, "file:"); ok {
		return Source{File: rest}, nil
	}
	return Source{}, fmt.Errorf("unknown convention source %q", s)
}

// Install fetches a bundle into the cache and returns its directory.
// nameVer is name@version. Already-installed bundles are left untouched.
func Install(ctx context.Context, repoRoot, nameVer, source string) (string, error) {
	src, err := ParseSource(source)
	if err != nil {
		return "", err
	}
	at := strings.LastIndexByte(nameVer, '@')
	if at <= 0 {
		return "", fmt.Errorf("convention %q: expected name@version", nameVer)
	}
	dest := filepath.Join(CacheRoot(repoRoot), cacheKey(nameVer[:at], nameVer[at+1:]))
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	if src.isGithub() {
		url := fmt.Sprintf("https://github.com/%s/%s/archive/refs/tags/%s.tar.gz", src.Owner, src.Repo, src.Tag)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("download %s: %w", url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("download %s: %s", url, resp.Status)
		}
		if err := extractTarGz(resp.Body, dest); err != nil {
			return "", fmt.Errorf("extract %s: %w", url, err)
		}
		return dest, nil
	}

	f, err := os.Open(src.File)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := extractTarGz(f, dest); err != nil {
		return "", fmt.Errorf("extract %s: %w", src.File, err)
	}
	return dest, nil
}

// List returns the installed bundle directories, sorted.
func List(repoRoot string) []string {
	entries, err := os.ReadDir(CacheRoot(repoRoot))
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}

// Prune removes the whole convention cache.
func Prune(repoRoot string) error {
	root := CacheRoot(repoRoot)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	return os.RemoveAll(root)
}
