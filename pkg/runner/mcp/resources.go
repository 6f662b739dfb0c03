package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	notesURI     = "journal://notes"
	tasksURIBase = "journal://tasks/"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerNotesResource(srv, svc)
	registerTasksTemplate(srv, svc)
}

func registerNotesResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		notesURI,
		"Brain dump",
		mcp.WithResourceDescription("Every brain dump note, oldest first."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		notes, err := svc.ListNotes(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"count": len(notes),
			"notes": notes,
		})
	})
}

func registerTasksTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		tasksURIBase+"{date}",
		"Tasks for a day",
		mcp.WithTemplateDescription("Tasks scheduled on a day (YYYY-MM-DD or today), open tasks first."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		date := templateArg(request, "date")
		if date == "" {
			date = strings.TrimPrefix(request.Params.URI, tasksURIBase)
		}
		day, tasks, err := svc.ListTasks(ctx, date)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"date":  day,
			"count": len(tasks),
			"tasks": tasks,
		})
	})
}

// templateArg reads a matched URI template variable, which arrives as a
// string or a single element list depending on the template matcher.
func templateArg(request mcp.ReadResourceRequest, name string) string {
	switch v := request.Params.Arguments[name].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
