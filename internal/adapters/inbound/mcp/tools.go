package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerTools registers all stackshot MCP tools on the given server.
func registerTools(s *server.MCPServer, opts Options) {
	// 1. stackshot_list_services
	s.AddTool(
		mcplib.NewTool("stackshot_list_services",
			mcplib.WithDescription("Returns the service registry: names, addresses, expected markers and API paths"),
		),
		handleListServices(opts),
	)

	// 2. stackshot_get_report
	s.AddTool(
		mcplib.NewTool("stackshot_get_report",
			mcplib.WithDescription("Returns the last run report, or one service's verdict from it"),
			mcplib.WithString("service", mcplib.Description("Return only this service's verdict")),
		),
		handleGetReport(opts),
	)

	// 3. stackshot_check_service
	s.AddTool(
		mcplib.NewTool("stackshot_check_service",
			mcplib.WithDescription("Captures and validates one service now and returns its verdict. The report file is not modified."),
			mcplib.WithString("name",
				mcplib.Required(),
				mcplib.Description("Service name as listed in the registry"),
			),
		),
		handleCheckService(opts),
	)
}

func handleListServices(opts Options) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		reg, err := opts.Registry.Load(opts.RegistryPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading registry: %v", err)), nil
		}
		return jsonResult(reg.All())
	}
}

func handleGetReport(opts Options) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		r, err := opts.Reports.Read(opts.ReportPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return errorResult(fmt.Sprintf("no report at %s; run `stackshot run` first", opts.ReportPath)), nil
			}
			return errorResult(fmt.Sprintf("reading report: %v", err)), nil
		}

		name := request.GetString("service", "")
		if name == "" {
			return jsonResult(r)
		}
		for _, v := range r.Services {
			if v.ServiceName == name {
				return jsonResult(v)
			}
		}
		return errorResult(fmt.Sprintf("service %q not in report", name)), nil
	}
}

func handleCheckService(opts Options) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		reg, err := opts.Registry.Load(opts.RegistryPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading registry: %v", err)), nil
		}
		d, ok := reg.Lookup(name)
		if !ok {
			return errorResult(fmt.Sprintf("service %q not found in registry", name)), nil
		}
		if opts.Checker == nil {
			return errorResult("service checks are not available"), nil
		}
		return jsonResult(opts.Checker.Evaluate(ctx, d))
	}
}

// jsonResult marshals v as indented JSON text content.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool error the client can show to the model.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
