package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	reportURI          = "stackshot://report"
	serviceURITemplate = "stackshot://services/{name}"
)

// registerResources registers all stackshot MCP resources on the given server.
func registerResources(s *server.MCPServer, opts Options) {
	s.AddResource(
		mcplib.NewResource(
			reportURI,
			"Run Report",
			mcplib.WithResourceDescription("The last written service validation report"),
			mcplib.WithMIMEType("application/json"),
		),
		handleReportResource(opts),
	)

	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			serviceURITemplate,
			"Service Verdict",
			mcplib.WithTemplateDescription("One service's verdict from the last written report"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleServiceResource(opts),
	)
}

func handleReportResource(opts Options) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		r, err := opts.Reports.Read(opts.ReportPath)
		if err != nil {
			return nil, fmt.Errorf("reading report: %w", err)
		}

		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling report: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      reportURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}

func handleServiceResource(opts Options) server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		name := templateArg(request.Params.Arguments, "name")
		if name == "" {
			return nil, fmt.Errorf("service name is required")
		}

		r, err := opts.Reports.Read(opts.ReportPath)
		if err != nil {
			return nil, fmt.Errorf("reading report: %w", err)
		}
		for _, v := range r.Services {
			if v.ServiceName != name {
				continue
			}
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("marshaling verdict: %w", err)
			}
			return []mcplib.ResourceContents{
				mcplib.TextResourceContents{
					URI:      request.Params.URI,
					MIMEType: "application/json",
					Text:     string(data),
				},
			}, nil
		}
		return nil, fmt.Errorf("service %q not in report", name)
	}
}

// templateArg reads a URI template variable, which the server may hand over
// either as a string or as a single-element list.
func templateArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}
