package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/dmgrok/mcp-mother-skills/internal/config"
	"github.com/dmgrok/mcp-mother-skills/pkg/catalog"
	"github.com/dmgrok/mcp-mother-skills/pkg/skills"
	"github.com/dmgrok/mcp-mother-skills/pkg/sync"
)

// testServer builds a Server against an httptest catalog source serving
// one react skill.
func testServer(t *testing.T) (*Server, string) {
	t.Helper()

	doc := "---\nname: react\nversion: 1.0.0\n---\n\n# React\n"
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/catalog.json":
			entries := []catalog.Skill{{
				Name:     "react",
				Version:  "1.0.0",
				Location: srv.URL + "/skills/react",
				Triggers: catalog.Triggers{Packages: []string{"react"}},
			}}
			json.NewEncoder(w).Encode(entries)
		case "/skills/react/SKILL.md":
			fmt.Fprint(w, doc)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	skillsDir := t.TempDir()
	cfg := config.Config{
		SkillsDir: skillsDir,
		CacheDir:  t.TempDir(),
		TTLDays:   1,
		Sources: []catalog.Source{
			{Name: "test", URL: srv.URL + "/catalog.json", Priority: 1},
		},
	}
	server, err := NewServer(cfg, log.New(os.Stderr))
	if err != nil {
		t.Fatal(err)
	}
	return server, skillsDir
}

func request(args map[string]any) mcplib.CallToolRequest {
	req := mcplib.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	if result.IsError {
		t.Fatalf("tool returned error: %+v", result.Content)
	}
	if len(result.Content) == 0 {
		t.Fatal("tool returned no content")
	}
	text, ok := result.Content[0].(mcplib.TextContent)
	if !ok {
		t.Fatalf("content is %T, want text", result.Content[0])
	}
	return text.Text
}

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	manifest := `{"name": "demo", "dependencies": {"react": "^18.2.0"}}`
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestHandleDetectStack(t *testing.T) {
	server, _ := testServer(t)
	project := writeProject(t)

	result, err := server.handleDetectStack(context.Background(), request(map[string]any{"path": project}))
	if err != nil {
		t.Fatal(err)
	}

	var out detectResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, tech := range out.Stack["frameworks"] {
		if tech.ID == "react" {
			found = true
		}
	}
	if !found {
		t.Errorf("react not in detected frameworks: %+v", out.Stack)
	}
}

func TestHandleGetCatalog(t *testing.T) {
	server, _ := testServer(t)

	result, err := server.handleGetCatalog(context.Background(), request(nil))
	if err != nil {
		t.Fatal(err)
	}
	var entries []catalog.Skill
	if err := json.Unmarshal([]byte(resultText(t, result)), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name != "react" {
		t.Errorf("catalog = %+v, want the react skill", entries)
	}
}

func TestPreviewConfirmRoundTrip(t *testing.T) {
	server, skillsDir := testServer(t)
	project := writeProject(t)
	ctx := context.Background()

	result, err := server.handlePreviewSync(ctx, request(map[string]any{"path": project}))
	if err != nil {
		t.Fatal(err)
	}
	var session sync.Session
	if err := json.Unmarshal([]byte(resultText(t, result)), &session); err != nil {
		t.Fatal(err)
	}
	if session.ID == "" || len(session.Changes) != 1 {
		t.Fatalf("session = %+v, want an id and one pending add", session)
	}

	result, err = server.handleConfirmSync(ctx, request(map[string]any{"session_id": session.ID}))
	if err != nil {
		t.Fatal(err)
	}
	var applied sync.Result
	if err := json.Unmarshal([]byte(resultText(t, result)), &applied); err != nil {
		t.Fatal(err)
	}
	if len(applied.Applied) != 1 {
		t.Fatalf("applied = %+v, want one change", applied)
	}
	if _, err := os.Stat(filepath.Join(skillsDir, "react", skills.Document)); err != nil {
		t.Errorf("skill not materialized: %v", err)
	}

	// Confirmation is single-use.
	result, err = server.handleConfirmSync(ctx, request(map[string]any{"session_id": session.ID}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("second confirm of the same session must fail")
	}
}

func TestHandleInstallSkill(t *testing.T) {
	server, skillsDir := testServer(t)
	ctx := context.Background()

	result, err := server.handleInstallSkill(ctx, request(map[string]any{"name": "react"}))
	if err != nil {
		t.Fatal(err)
	}
	resultText(t, result)
	if _, err := os.Stat(filepath.Join(skillsDir, "react", skills.Document)); err != nil {
		t.Errorf("skill not installed: %v", err)
	}

	result, err = server.handleInstallSkill(ctx, request(map[string]any{"name": "nope"}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("installing an unknown skill must return a structured error")
	}
}

func TestHandleUninstallMissingIsNoOp(t *testing.T) {
	server, _ := testServer(t)
	result, err := server.handleUninstallSkill(context.Background(), request(map[string]any{"name": "ghost"}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Errorf("uninstalling a missing skill must not error: %+v", result.Content)
	}
}
