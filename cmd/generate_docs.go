package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/mcp-calendar/internal/config"
	"github.com/teemow/mcp-calendar/internal/instrumentation"
	"github.com/teemow/mcp-calendar/internal/server"
	"github.com/teemow/mcp-calendar/internal/tools/registry"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(outputFile string) error {
	// Registration needs no credentials, so an empty configuration is enough.
	serverContext, err := server.NewServerContext(context.Background(), &config.Config{})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	reg, err := buildRegistry(serverContext)
	if err != nil {
		return err
	}

	markdown := generateToolsMarkdown(reg.Descriptors())

	// Write to output
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(markdown)
	}

	return nil
}

func generateToolsMarkdown(descriptors []registry.Descriptor) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running mcp-calendar as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	toolsByCategory := groupToolsByCategory(descriptors)

	// Table of contents
	sb.WriteString("## Table of Contents\n\n")
	categories := make([]string, 0, len(toolsByCategory))
	for category := range toolsByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", category, anchor))
	}
	sb.WriteString("\n")

	// Tools keep their registration order within a category.
	for _, category := range categories {
		sb.WriteString(fmt.Sprintf("## %s\n\n", category))

		for _, d := range toolsByCategory[category] {
			sb.WriteString(generateToolMarkdown(d))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func groupToolsByCategory(descriptors []registry.Descriptor) map[string][]registry.Descriptor {
	categories := make(map[string][]registry.Descriptor)

	for _, d := range descriptors {
		category := categoryForService(d.Service)
		categories[category] = append(categories[category], d)
	}

	return categories
}

func categoryForService(service string) string {
	switch service {
	case instrumentation.ServiceCalendar:
		return "Google Calendar Tools"
	case instrumentation.ServiceRouting:
		return "Routing Tools"
	default:
		return "Other"
	}
}

func generateToolMarkdown(d registry.Descriptor) string {
	var sb strings.Builder
	tool := registry.ToMCPTool(d)

	// Tool name
	sb.WriteString(fmt.Sprintf("### %s\n\n", tool.Name))

	// Description
	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", tool.Description))
	}
	if hints := toolHints(tool); hints != "" {
		sb.WriteString(fmt.Sprintf("_%s_\n\n", hints))
	}

	if len(d.Params) > 0 {
		sb.WriteString("**Arguments:**\n")

		// Declaration order, which is also the validation order.
		for _, param := range d.Params {
			requiredStr := "required"
			if param.Optional {
				requiredStr = "optional"
			}

			sb.WriteString(fmt.Sprintf("- `%s` (%s, %s): ", param.Name, param.Type, requiredStr))

			propMap, _ := tool.InputSchema.Properties[param.Name].(map[string]interface{})
			if desc, ok := propMap["description"].(string); ok && desc != "" {
				sb.WriteString(desc)
			} else {
				sb.WriteString(fmt.Sprintf("%s parameter", getPropertyType(propMap)))
			}

			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func toolHints(tool mcp.Tool) string {
	var hints []string
	if h := tool.Annotations.ReadOnlyHint; h != nil && *h {
		hints = append(hints, "read-only")
	}
	if h := tool.Annotations.DestructiveHint; h != nil && *h {
		hints = append(hints, "destructive")
	}
	return strings.Join(hints, ", ")
}

func getPropertyType(prop map[string]interface{}) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}
