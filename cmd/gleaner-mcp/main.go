// gleaner-mcp is a stdio MCP server that bridges MCP clients to a running
// gleanerd instance: starting harvest runs and reading their results.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// harvestResponse mirrors the gleanerd API response model.
type harvestResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// harvestStatusResponse mirrors the gleanerd harvest status API response.
type harvestStatusResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Summary   *struct {
		TotalItems    int            `json:"total_items"`
		PerQuery      map[string]int `json:"per_query"`
		FailedQueries []string       `json:"failed_queries"`
	} `json:"summary"`
	Items []json.RawMessage `json:"items"`
}

func main() {
	apiURL := os.Getenv("GLEANER_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("GLEANER_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "GLEANER_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"gleaner",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	runHarvestTool := mcp.NewTool("run_harvest",
		mcp.WithDescription("Harvest recent social posts matching the given query terms. Runs until each query's feed converges, then returns the collection summary. The run can take minutes; use harvest_status with the returned job id to fetch items later."),
		mcp.WithArray("queries",
			mcp.Required(),
			mcp.Description("Search terms to harvest, processed in order"),
		),
		mcp.WithNumber("days_back",
			mcp.Description("Trailing date window in days for each query (default: 3)"),
		),
		mcp.WithNumber("max_steps",
			mcp.Description("Pagination step ceiling per query (default: 50)"),
		),
	)
	s.AddTool(runHarvestTool, handleRunHarvest(apiURL, apiKey))

	harvestStatusTool := mcp.NewTool("harvest_status",
		mcp.WithDescription("Fetch the status, summary, and harvested items of a harvest job started with run_harvest."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The harvest job id"),
		),
	)
	s.AddTool(harvestStatusTool, handleHarvestStatus(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleRunHarvest(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Minute}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		queries, err := request.RequireStringSlice("queries")
		if err != nil {
			return mcp.NewToolResultError("queries is required and must be an array of strings"), nil
		}

		payload := map[string]interface{}{
			"queries": queries,
		}

		args := request.GetArguments()
		if daysBack, ok := args["days_back"]; ok {
			payload["days_back"] = daysBack
		}
		if maxSteps, ok := args["max_steps"]; ok {
			payload["max_steps"] = maxSteps
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/harvest", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("harvest request failed: %v", err)), nil
		}

		var hr harvestResponse
		if err := json.Unmarshal(respBody, &hr); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse harvest response: %v", err)), nil
		}
		if hr.ID == "" {
			errMsg := "harvest job creation failed"
			if hr.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", hr.Error.Code, hr.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		// Poll until the run finishes.
		resultBody, err := pollJobCompletion(ctx, client, apiURL, apiKey, "/api/v1/harvest/"+hr.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling harvest job failed: %v", err)), nil
		}

		var status harvestStatusResponse
		if err := json.Unmarshal(resultBody, &status); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse harvest status: %v", err)), nil
		}

		return mcp.NewToolResultText(formatStatus(&status)), nil
	}
}

func handleHarvestStatus(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/api/v1/harvest/"+id, nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		req.Header.Set("X-API-Key", apiKey)

		resp, err := client.Do(req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var status harvestStatusResponse
		if err := json.Unmarshal(body, &status); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse harvest status: %v", err)), nil
		}

		return mcp.NewToolResultText(formatStatus(&status)), nil
	}
}

// formatStatus renders a job's summary plus the raw items as pretty JSON.
func formatStatus(status *harvestStatusResponse) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Harvest %s: %s (%d/%d queries)\n", status.ID, status.Status, status.Completed, status.Total))

	if status.Summary != nil {
		sb.WriteString(fmt.Sprintf("Total items: %d\n", status.Summary.TotalItems))
		for query, count := range status.Summary.PerQuery {
			sb.WriteString(fmt.Sprintf("  %s: %d\n", query, count))
		}
		if len(status.Summary.FailedQueries) > 0 {
			sb.WriteString("Failed queries: " + strings.Join(status.Summary.FailedQueries, ", ") + "\n")
		}
	}

	if len(status.Items) > 0 {
		sb.WriteString("\nItems:\n")
		for _, raw := range status.Items {
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, raw, "", "  "); err != nil {
				pretty.Write(raw)
			}
			sb.WriteString(pretty.String() + "\n")
		}
	}

	return sb.String()
}

func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// pollJobCompletion polls a job endpoint until status is no longer "processing" or context is cancelled.
func pollJobCompletion(ctx context.Context, client *http.Client, apiURL, apiKey, endpoint string) ([]byte, error) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+endpoint, nil)
			if err != nil {
				return nil, fmt.Errorf("create poll request: %w", err)
			}
			req.Header.Set("X-API-Key", apiKey)

			resp, err := client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("poll request failed: %w", err)
			}

			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read poll response: %w", err)
			}

			var status struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(body, &status); err != nil {
				return nil, fmt.Errorf("parse poll status: %w", err)
			}

			if status.Status != "processing" {
				return body, nil
			}
		}
	}
}
