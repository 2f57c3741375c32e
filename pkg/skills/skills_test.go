package skills

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmgrok/mcp-mother-skills/pkg/catalog"
	"github.com/dmgrok/mcp-mother-skills/pkg/errors"
)

const reactDoc = `---
name: react
version: 1.2.0
description: React component patterns.
---

# React

Guidance body.
`

func skillServer(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMaterializer_InstallWritesDocumentAndResources(t *testing.T) {
	srv := skillServer(t, map[string]string{
		"/react/SKILL.md":            reactDoc,
		"/react/examples/hooks.md":   "hooks example",
		"/react/examples/context.md": "context example",
	})
	dir := t.TempDir()
	m, err := NewMaterializer(dir)
	if err != nil {
		t.Fatal(err)
	}

	skill := catalog.Skill{
		Name:      "react",
		Location:  srv.URL + "/react",
		Version:   "1.2.0",
		Resources: []string{"examples/hooks.md", "examples/context.md"},
	}
	if err := m.Install(context.Background(), skill); err != nil {
		t.Fatalf("Install() failed: %v", err)
	}

	doc, err := os.ReadFile(filepath.Join(dir, "react", "SKILL.md"))
	if err != nil {
		t.Fatalf("primary document missing: %v", err)
	}
	if string(doc) != reactDoc {
		t.Error("primary document not written verbatim")
	}
	if _, err := os.Stat(filepath.Join(dir, "react", "examples", "hooks.md")); err != nil {
		t.Errorf("resource missing: %v", err)
	}
}

func TestMaterializer_InstallOverwrites(t *testing.T) {
	srv := skillServer(t, map[string]string{"/react/SKILL.md": reactDoc})
	dir := t.TempDir()
	m, err := NewMaterializer(dir)
	if err != nil {
		t.Fatal(err)
	}

	docPath := filepath.Join(dir, "react", "SKILL.md")
	if err := os.MkdirAll(filepath.Dir(docPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(docPath, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	skill := catalog.Skill{Name: "react", Location: srv.URL + "/react"}
	if err := m.Install(context.Background(), skill); err != nil {
		t.Fatalf("Install() failed: %v", err)
	}
	doc, _ := os.ReadFile(docPath)
	if string(doc) != reactDoc {
		t.Error("reinstall must overwrite the previous document")
	}
}

func TestMaterializer_InstallFromFileLocation(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "SKILL.md"), []byte(reactDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	m, err := NewMaterializer(dir)
	if err != nil {
		t.Fatal(err)
	}
	skill := catalog.Skill{Name: "react", Location: "file://" + filepath.ToSlash(src)}
	if err := m.Install(context.Background(), skill); err != nil {
		t.Fatalf("Install() from file location failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "react", "SKILL.md")); err != nil {
		t.Errorf("document missing: %v", err)
	}
}

func TestMaterializer_InstallRejectsEscapingResource(t *testing.T) {
	srv := skillServer(t, map[string]string{"/react/SKILL.md": reactDoc})
	m, err := NewMaterializer(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	skill := catalog.Skill{
		Name:      "react",
		Location:  srv.URL + "/react",
		Resources: []string{"../outside.md"},
	}
	err = m.Install(context.Background(), skill)
	if errors.GetCode(err) != errors.ErrCodeInvalidSkill {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeInvalidSkill)
	}
}

func TestMaterializer_UninstallIdempotent(t *testing.T) {
	dir := t.TempDir()
	m, err := NewMaterializer(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "react"), 0o755); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := m.Uninstall(ctx, "react"); err != nil {
		t.Fatalf("Uninstall() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "react")); !os.IsNotExist(err) {
		t.Error("skill directory still present after uninstall")
	}
	if err := m.Uninstall(ctx, "react"); err != nil {
		t.Errorf("second Uninstall() must be a no-op, got %v", err)
	}
}

func TestList_ReadsFrontmatterWithDirFallback(t *testing.T) {
	dir := t.TempDir()
	write := func(name, doc string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name, Document), []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("react-dir", reactDoc)
	write("bare", "# No frontmatter here\n")
	// A subdirectory without a document is not an installed skill.
	if err := os.MkdirAll(filepath.Join(dir, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	installed, err := List(dir)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(installed) != 2 {
		t.Fatalf("List() returned %d skills, want 2", len(installed))
	}

	byName := make(map[string]Installed)
	for _, s := range installed {
		byName[s.Name] = s
	}
	react, ok := byName["react"]
	if !ok {
		t.Fatal("declared name from frontmatter not used")
	}
	if react.Version != "1.2.0" {
		t.Errorf("react version = %q, want 1.2.0", react.Version)
	}
	if _, ok := byName["bare"]; !ok {
		t.Error("skill without frontmatter should fall back to its directory name")
	}
}

func TestList_MissingDirectory(t *testing.T) {
	installed, err := List(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("List() on a missing directory failed: %v", err)
	}
	if len(installed) != 0 {
		t.Errorf("got %d skills, want 0", len(installed))
	}
}
