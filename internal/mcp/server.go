// Package mcp exposes repository question answering over the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/arturoeanton/repolens/internal/service"
)

// QuestionAnswerer answers questions and lists repositories for MCP tools.
type QuestionAnswerer interface {
	AnswerEach(ctx context.Context, question string, repositories []string, topK int) []service.RepositoryAnswer
	Repositories(ctx context.Context) ([]string, error)
}

// Server wraps the MCP server with RepoLens tools.
type Server struct {
	mcpServer *server.MCPServer
	answers   QuestionAnswerer
	topK      int
	port      string
	logger    *slog.Logger
}

// NewServer creates a new MCP server. topK is used when a call does not set one.
func NewServer(answers QuestionAnswerer, topK int, port, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		answers: answers,
		topK:    topK,
		port:    port,
		logger:  logger,
	}

	mcpServer := server.NewMCPServer(
		"repolens",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	answerTool := mcp.NewTool("answer_question",
		mcp.WithDescription("Answer a natural-language question about one or more indexed repositories"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question, e.g. \"who is the most active contributor in repo demo?\""),
		),
		mcp.WithString("repository",
			mcp.Description("Repository name; inferred from the question when omitted"),
		),
		mcp.WithArray("repositories",
			mcp.Description("Answer separately for each of these repositories"),
			mcp.WithStringItems(),
		),
		mcp.WithNumber("top_k",
			mcp.Description(fmt.Sprintf("Number of retrieved chunks (default: %d)", s.topK)),
		),
	)
	mcpServer.AddTool(answerTool, s.handleAnswer)

	listTool := mcp.NewTool("list_repositories",
		mcp.WithDescription("List the names of all indexed repositories"),
	)
	mcpServer.AddTool(listTool, s.handleList)
}

func (s *Server) handleAnswer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil || strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("question is required"), nil
	}

	var repos []string
	if repo := request.GetString("repository", ""); repo != "" {
		repos = append(repos, repo)
	}
	for _, r := range request.GetStringSlice("repositories", nil) {
		if r != "" && (len(repos) == 0 || r != repos[0]) {
			repos = append(repos, r)
		}
	}

	topK := request.GetInt("top_k", s.topK)
	if topK <= 0 {
		topK = s.topK
	}

	s.logger.Info("MCP answer_question", "repositories", repos, "top_k", topK)
	answers := s.answers.AnswerEach(ctx, question, repos, topK)

	if len(answers) == 1 {
		return mcp.NewToolResultText(answers[0].Answer), nil
	}
	parts := make([]string, len(answers))
	for i, a := range answers {
		parts[i] = a.Answer
	}
	return mcp.NewToolResultText(strings.Join(parts, "\n\n---\n\n")), nil
}

func (s *Server) handleList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.answers.Repositories(ctx)
	if err != nil {
		s.logger.Error("list repositories failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to list repositories: %v", err)), nil
	}
	if names == nil {
		names = []string{}
	}

	jsonBytes, err := json.Marshal(names)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Start serves MCP over SSE on the configured port.
func (s *Server) Start() error {
	sse := server.NewSSEServer(s.mcpServer)
	s.logger.Info("MCP server starting", "port", s.port)
	return sse.Start(":" + s.port)
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
