package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/dmgrok/mcp-mother-skills/pkg/detect"
	"github.com/dmgrok/mcp-mother-skills/pkg/errors"
	"github.com/dmgrok/mcp-mother-skills/pkg/match"
	"github.com/dmgrok/mcp-mother-skills/pkg/skills"
	"github.com/dmgrok/mcp-mother-skills/pkg/stack"
	"github.com/dmgrok/mcp-mother-skills/pkg/sync"
)

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.detectStackTool(),
		s.getCatalogTool(),
		s.getBundlesTool(),
		s.previewSyncTool(),
		s.confirmSyncTool(),
		s.syncSkillsTool(),
		s.installSkillTool(),
		s.uninstallSkillTool(),
		s.listInstalledTool(),
	)
}

func (s *Server) detectStackTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("detect_project_stack",
		mcplib.WithDescription("Detect the technology stack of a project directory by merging evidence from manifest files, static analysis, the GitHub dependency graph, and README mentions"),
		mcplib.WithString("path",
			mcplib.Description("Project directory to scan (default: current directory)"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleDetectStack}
}

func (s *Server) getCatalogTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("get_skill_catalog",
		mcplib.WithDescription("Get the aggregated skill catalog from all configured sources"),
		mcplib.WithBoolean("refresh",
			mcplib.Description("Bypass the cache and refetch all sources"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleGetCatalog}
}

func (s *Server) getBundlesTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("get_skill_bundles",
		mcplib.WithDescription("Get the curated skill bundles"),
		mcplib.WithBoolean("refresh",
			mcplib.Description("Bypass the cache and refetch the bundle document"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleGetBundles}
}

func (s *Server) previewSyncTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("preview_skill_sync",
		mcplib.WithDescription("Detect the project stack, match it against the catalog, and return the pending changes with a session id for confirm_skill_sync. The session expires after 5 minutes and is single-use."),
		mcplib.WithString("path",
			mcplib.Description("Project directory to scan (default: current directory)"),
		),
		mcplib.WithBoolean("refresh",
			mcplib.Description("Bypass the catalog cache"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handlePreviewSync}
}

func (s *Server) confirmSyncTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("confirm_skill_sync",
		mcplib.WithDescription("Apply a previously previewed sync session. Without approve/reject lists all pending changes are applied; a name on both lists is rejected."),
		mcplib.WithString("session_id",
			mcplib.Required(),
			mcplib.Description("Session id returned by preview_skill_sync"),
		),
		mcplib.WithArray("approve",
			mcplib.Description("Skill names to apply (default: all pending)"),
		),
		mcplib.WithArray("reject",
			mcplib.Description("Skill names to skip; takes precedence over approve"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleConfirmSync}
}

func (s *Server) syncSkillsTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("sync_skills",
		mcplib.WithDescription("Detect, match, and apply skill changes immediately without a confirmation step"),
		mcplib.WithString("path",
			mcplib.Description("Project directory to scan (default: current directory)"),
		),
		mcplib.WithBoolean("refresh",
			mcplib.Description("Bypass the catalog cache"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleSyncSkills}
}

func (s *Server) installSkillTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("install_skill",
		mcplib.WithDescription("Install a single skill by name from the catalog"),
		mcplib.WithString("name",
			mcplib.Required(),
			mcplib.Description("Skill name as listed in the catalog"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleInstallSkill}
}

func (s *Server) uninstallSkillTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("uninstall_skill",
		mcplib.WithDescription("Remove an installed skill by name. Removing a skill that is not installed is a no-op."),
		mcplib.WithString("name",
			mcplib.Required(),
			mcplib.Description("Installed skill name"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleUninstallSkill}
}

func (s *Server) listInstalledTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("list_installed_skills",
		mcplib.WithDescription("List skills currently installed in the skills directory"),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleListInstalled}
}

// =============================================================================
// Handlers
// =============================================================================

// detectResult is the payload of detect_project_stack.
type detectResult struct {
	Stack  map[stack.Category][]stack.Technology `json:"stack"`
	Report detect.Report                         `json:"report"`
}

func (s *Server) detect(ctx context.Context, dir string) (*stack.Stack, detect.Report, error) {
	pipeline, err := s.newPipeline()
	if err != nil {
		return nil, detect.Report{}, err
	}
	st, report := pipeline.Run(ctx, dir)
	return st, report, nil
}

func (s *Server) handleDetectStack(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	st, report, err := s.detect(ctx, stringArg(req, "path", "."))
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("detection failed", err), nil
	}
	return toolResultJSON(detectResult{Stack: st.MarshalCategories(), Report: report})
}

func (s *Server) handleGetCatalog(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	catalogSkills, err := s.store.Catalog(ctx, boolArg(req, "refresh"))
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to load catalog", err), nil
	}
	return toolResultJSON(catalogSkills)
}

func (s *Server) handleGetBundles(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	bundles, err := s.store.Bundles(ctx, boolArg(req, "refresh"))
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to load bundles", err), nil
	}
	return toolResultJSON(bundles)
}

func (s *Server) handlePreviewSync(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	session, err := s.previewFor(ctx, req)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("preview failed", err), nil
	}
	return toolResultJSON(session)
}

func (s *Server) handleConfirmSync(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	id := stringArg(req, "session_id", "")
	if id == "" {
		return mcplib.NewToolResultError("session_id is required"), nil
	}
	result, err := s.engine.Confirm(ctx, id, stringSliceArg(req, "approve"), stringSliceArg(req, "reject"))
	if err != nil {
		if errors.GetCode(err) == errors.ErrCodeSessionNotFound {
			return mcplib.NewToolResultError(err.Error()), nil
		}
		return mcplib.NewToolResultErrorFromErr("confirm failed", err), nil
	}
	return toolResultJSON(result)
}

func (s *Server) handleSyncSkills(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	matches, installed, err := s.matchFor(ctx, req)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("sync failed", err), nil
	}
	return toolResultJSON(s.engine.SyncImmediate(ctx, matches, installed))
}

func (s *Server) handleInstallSkill(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	name := stringArg(req, "name", "")
	if name == "" {
		return mcplib.NewToolResultError("name is required"), nil
	}

	catalogSkills, err := s.store.Catalog(ctx, false)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to load catalog", err), nil
	}
	for _, skill := range catalogSkills {
		if strings.EqualFold(skill.Name, name) {
			if err := s.mat.Install(ctx, skill); err != nil {
				return mcplib.NewToolResultErrorFromErr(fmt.Sprintf("failed to install %s", name), err), nil
			}
			return toolResultJSON(skill)
		}
	}
	return mcplib.NewToolResultError(fmt.Sprintf("skill %s not found in catalog", name)), nil
}

func (s *Server) handleUninstallSkill(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	name := stringArg(req, "name", "")
	if name == "" {
		return mcplib.NewToolResultError("name is required"), nil
	}
	if err := s.mat.Uninstall(ctx, name); err != nil {
		return mcplib.NewToolResultErrorFromErr(fmt.Sprintf("failed to uninstall %s", name), err), nil
	}
	return mcplib.NewToolResultText(fmt.Sprintf("removed %s", name)), nil
}

func (s *Server) handleListInstalled(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	installed, err := s.mat.List()
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list installed skills", err), nil
	}
	return toolResultJSON(installed)
}

// previewFor runs detection and matching for req and parks the diff in the
// session store.
func (s *Server) previewFor(ctx context.Context, req mcplib.CallToolRequest) (*sync.Session, error) {
	matches, installed, err := s.matchFor(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.engine.Preview(ctx, matches, installed), nil
}

// matchFor runs detection and catalog matching with the request's path and
// refresh arguments.
func (s *Server) matchFor(ctx context.Context, req mcplib.CallToolRequest) (matches []match.Match, installed []skills.Installed, err error) {
	st, _, err := s.detect(ctx, stringArg(req, "path", "."))
	if err != nil {
		return nil, nil, err
	}
	catalogSkills, err := s.store.Catalog(ctx, boolArg(req, "refresh"))
	if err != nil {
		return nil, nil, err
	}
	installed, err = s.mat.List()
	if err != nil {
		return nil, nil, err
	}
	return s.newMatcher(catalogSkills).Run(st), installed, nil
}

// =============================================================================
// Argument and result helpers
// =============================================================================

func stringArg(req mcplib.CallToolRequest, key, fallback string) string {
	if v, ok := req.GetArguments()[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func boolArg(req mcplib.CallToolRequest, key string) bool {
	v, _ := req.GetArguments()[key].(bool)
	return v
}

func stringSliceArg(req mcplib.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toolResultJSON(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal result", err), nil
	}
	return mcplib.NewToolResultText(string(data)), nil
}
