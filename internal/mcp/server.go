// Package mcp provides the stdio MCP server exposing shop context tools for
// coding agents.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/go-ports/shopctl/internal/buildinfo"
	"github.com/go-ports/shopctl/internal/env"
	"github.com/go-ports/shopctl/internal/history"
	"github.com/go-ports/shopctl/internal/models"
	"github.com/go-ports/shopctl/internal/render"
)

const getContextDescription = `Get the current shop context: the selected account with its AWS profile, the selected cluster with its kube context, and the namespace. Call this before running any cloud or kubectl command so that it targets the right account and cluster.` //nolint:lll

const listAccountsDescription = `List the accounts and clusters known to the shop, marking which ones are configured locally and which one is current.`

const switchDescription = `Select the %s for subsequent commands. The selection is persisted for every shell using the same shop root. The response is the resolved context after the switch.` //nolint:lll

// NewServer creates and registers all shop tools on a new MCP server. Every
// tool call reloads the root's stores. hist may be nil, in which case
// switches are not journaled.
func NewServer(root *env.Root, hist *history.DB) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("shop", buildinfo.Version)
	registerTools(s, &handler{root: root, hist: hist})
	return s
}

// Serve starts the stdio MCP server for root, blocking until stdin closes.
func Serve(_ context.Context, root *env.Root) error {
	hist, err := history.Open(root.HistoryPath())
	if err != nil {
		return fmt.Errorf("mcp: open history: %w", err)
	}
	defer hist.Close()

	return mcpserver.ServeStdio(NewServer(root, hist))
}

type handler struct {
	root *env.Root
	hist *history.DB
}

func registerTools(s *mcpserver.MCPServer, h *handler) {
	s.AddTool(mcp.NewTool("shop_get_context",
		mcp.WithDescription(getContextDescription),
	), h.getContext)

	s.AddTool(mcp.NewTool("shop_list_accounts",
		mcp.WithDescription(listAccountsDescription),
	), h.listAccounts)

	s.AddTool(mcp.NewTool("shop_switch_account",
		mcp.WithDescription(fmt.Sprintf(switchDescription, "account")),
		mcp.WithString("name",
			mcp.Description("Account name, e.g. prod."),
			mcp.Required(),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return h.switchTo(ctx, req, "account", (*env.Env).SwitchAccount)
	})

	s.AddTool(mcp.NewTool("shop_switch_cluster",
		mcp.WithDescription(fmt.Sprintf(switchDescription, "cluster of the current account")),
		mcp.WithString("name",
			mcp.Description("Cluster name."),
			mcp.Required(),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return h.switchTo(ctx, req, "cluster", (*env.Env).SwitchCluster)
	})

	s.AddTool(mcp.NewTool("shop_switch_namespace",
		mcp.WithDescription(fmt.Sprintf(switchDescription, "Kubernetes namespace")),
		mcp.WithString("name",
			mcp.Description("Namespace name."),
			mcp.Required(),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return h.switchTo(ctx, req, "namespace", (*env.Env).SwitchNamespace)
	})
}

// ---------------------------------------------------------------------------
// Tool handlers
// ---------------------------------------------------------------------------

func (h *handler) getContext(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	e, err := env.Load(h.root)
	if err != nil {
		return errorResult(err), nil
	}
	ctx, err := e.Context()
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(render.NewView(e.Shop(), ctx))
}

func (h *handler) listAccounts(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	e, err := env.Load(h.root)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]any{
		"shop":     e.Shop(),
		"current":  e.Normalize(e.Pointer(), true),
		"accounts": accountSummaries(e),
	})
}

func (h *handler) switchTo(ctx context.Context, req mcp.CallToolRequest, op string,
	fn func(*env.Env, string) (models.EnvContext, error),
) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	e, err := env.Load(h.root)
	if err != nil {
		return errorResult(err), nil
	}

	run := func() (models.EnvContext, error) { return fn(e, name) }
	var res models.EnvContext
	if h.hist != nil {
		res, err = h.hist.Track(ctx, op, e, run)
	} else {
		res, err = run()
	}
	if err != nil {
		return errorResult(err), nil
	}
	slog.Debug("mcp switch", "op", op, "name", name, "context", res.Pointer().String())
	return jsonResult(render.NewView(e.Shop(), res))
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type accountSummary struct {
	Name            string           `json:"name"`
	BootstrapName   string           `json:"bootstrapName"`
	BootstrapRegion string           `json:"bootstrapRegion"`
	Configured      bool             `json:"configured"`
	AWSProfile      string           `json:"awsProfile,omitempty"`
	Clusters        []clusterSummary `json:"clusters"`
}

type clusterSummary struct {
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Configured  bool   `json:"configured"`
	KubeContext string `json:"kubeContext,omitempty"`
}

// accountSummaries lists every shop account with its local configuration.
func accountSummaries(e *env.Env) []accountSummary {
	names := e.AccountNames()
	out := make([]accountSummary, 0, len(names))
	for _, name := range names {
		shopAcc, err := e.ShopAccount(name)
		if err != nil {
			continue
		}
		sum := accountSummary{
			Name:            name,
			BootstrapName:   shopAcc.BootstrapName,
			BootstrapRegion: shopAcc.BootstrapRegion,
			Clusters:        make([]clusterSummary, 0, len(shopAcc.Clusters)),
		}
		acc, found, err := e.LookupAccount(name)
		if err == nil && found {
			sum.Configured = true
			sum.AWSProfile = acc.User.AWSProfile
		}
		for _, cl := range e.ClusterNames(name) {
			cs := clusterSummary{Name: cl, Domain: shopAcc.Clusters[cl].Domain}
			if u, ok := acc.User.Clusters[cl]; ok {
				cs.Configured = true
				cs.KubeContext = u.KubeContext
			}
			sum.Clusters = append(sum.Clusters, cs)
		}
		out = append(out, sum)
	}
	return out
}

// errorResult reports err as a tool error, appending its remediation hint.
func errorResult(err error) *mcp.CallToolResult {
	msg := err.Error()
	if hint := models.Hint(err); hint != "" {
		msg += "\nSuggestion: " + hint
	}
	return mcp.NewToolResultError(msg)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
