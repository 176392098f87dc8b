package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/stackshot/stackshot/internal/domain"
)

// ServiceChecker evaluates a single service on demand.
type ServiceChecker interface {
	Evaluate(ctx context.Context, d domain.ServiceDescriptor) domain.ServiceVerdict
}

// ReportReader loads the last written run report.
type ReportReader interface {
	Read(path string) (*domain.RunReport, error)
}

// Options wire the MCP server to the registry, the last report and a checker.
type Options struct {
	Version      string
	Registry     domain.RegistryLoader
	RegistryPath string
	Reports      ReportReader
	ReportPath   string
	Checker      ServiceChecker
}

// NewStackshotMCPServer creates an MCP server with all stackshot tools and
// resources registered.
func NewStackshotMCPServer(opts Options) *server.MCPServer {
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"stackshot",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, opts)
	registerResources(s, opts)

	return s
}
