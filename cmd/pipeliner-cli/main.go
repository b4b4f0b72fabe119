// Package main provides a CLI for interacting with the pipeliner server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/streamhub/pipeliner/pkg/loader"
	"github.com/streamhub/pipeliner/pkg/schedule"
	"github.com/streamhub/pipeliner/pkg/validation"
)

var (
	// Global flags
	serverURL  string
	username   string
	password   string
	token      string
	orgID      string
	configPath string
)

// Config represents the CLI configuration saved between invocations.
type Config struct {
	ServerURL string `json:"server_url"`
	Username  string `json:"username"`
	Token     string `json:"token"`
	JWTToken  string `json:"jwt_token"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "pipeliner-cli",
		Short: "Pipeliner CLI",
		Long:  "Command-line interface for validating pipeline definitions and talking to the pipeliner server",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if serverURL == "" || (username == "" && token == "") {
				loadCLIConfig()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server URL")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "Username")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Password")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "API token")
	rootCmd.PersistentFlags().StringVar(&orgID, "org", "default", "Organization ID")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to CLI config file")

	rootCmd.AddCommand(loginCmd)

	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account management",
	}
	accountCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new account",
		Run:   createAccount,
	}
	accountCmd.AddCommand(accountCreateCmd)

	pipelineCmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Pipeline management",
	}
	pipelineListCmd := &cobra.Command{
		Use:   "list",
		Short: "List pipelines",
		Run:   listPipelines,
	}
	pipelineGetCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Get a pipeline definition",
		Args:  cobra.ExactArgs(1),
		Run:   getPipeline,
	}
	pipelineCreateCmd := &cobra.Command{
		Use:   "create [file]",
		Short: "Create a pipeline from a definition file",
		Args:  cobra.ExactArgs(1),
		Run:   createPipeline,
	}
	pipelineUpdateCmd := &cobra.Command{
		Use:   "update [id] [file]",
		Short: "Update a pipeline from a definition file",
		Args:  cobra.ExactArgs(2),
		Run:   updatePipeline,
	}
	pipelineDeleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a pipeline",
		Args:  cobra.ExactArgs(1),
		Run:   deletePipeline,
	}
	pipelineCmd.AddCommand(pipelineListCmd, pipelineGetCmd, pipelineCreateCmd, pipelineUpdateCmd, pipelineDeleteCmd)

	validateCmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a pipeline definition file locally",
		Long:  "Parses and validates a pipeline definition without contacting the server. Cross-pipeline checks like stream ownership need the server and are skipped.",
		Args:  cobra.ExactArgs(1),
		Run:   validateFile,
	}

	scheduleCmd := &cobra.Command{
		Use:   "schedule [file]",
		Short: "Preview the trigger schedule of a pipeline definition file",
		Args:  cobra.ExactArgs(1),
		Run:   scheduleFile,
	}

	rootCmd.AddCommand(accountCmd, pipelineCmd, validateCmd, scheduleCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// validateFile parses and validates a definition file without a server.
func validateFile(cmd *cobra.Command, args []string) {
	content, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	p, err := loader.NewLoader().Parse(content)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	result := validation.Validate(p, nil)
	if result.Valid {
		fmt.Println("Pipeline is valid")
		return
	}

	fmt.Printf("Pipeline is invalid (%d errors):\n", len(result.Errors))
	for _, e := range result.Errors {
		fmt.Printf("  - %s\n", e)
	}
	os.Exit(1)
}

// scheduleFile prints upcoming trigger times for the query nodes of a
// definition file.
func scheduleFile(cmd *cobra.Command, args []string) {
	content, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	p, err := loader.NewLoader().Parse(content)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	previews := schedule.ForPipeline(p, time.Now(), schedule.DefaultRunCount)
	if len(previews) == 0 {
		fmt.Println("No scheduled query nodes in this pipeline")
		return
	}

	for nodeID, preview := range previews {
		fmt.Printf("Node %s (%s): %s\n", nodeID, preview.FrequencyType, preview.Description)
		if preview.Error != "" {
			fmt.Printf("  error: %s\n", preview.Error)
			continue
		}
		for _, run := range preview.NextRuns {
			fmt.Printf("  %s\n", run.Format(time.RFC3339))
		}
	}
}

func listPipelines(cmd *cobra.Command, args []string) {
	body := doRequest(http.MethodGet, "/api/v1/pipelines", nil)

	var infos []map[string]interface{}
	if err := json.Unmarshal(body, &infos); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if len(infos) == 0 {
		fmt.Println("No pipelines")
		return
	}
	for _, info := range infos {
		fmt.Printf("%s  %s\n", info["id"], info["name"])
	}
}

func getPipeline(cmd *cobra.Command, args []string) {
	body := doRequest(http.MethodGet, "/api/v1/pipelines/"+args[0], nil)
	fmt.Println(string(body))
}

func createPipeline(cmd *cobra.Command, args []string) {
	content, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	reqBody, _ := json.Marshal(map[string]string{"content": string(content)})
	body := doRequest(http.MethodPost, "/api/v1/pipelines", bytes.NewReader(reqBody))

	var created map[string]string
	if err := json.Unmarshal(body, &created); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created pipeline %s\n", created["id"])
}

func updatePipeline(cmd *cobra.Command, args []string) {
	content, err := os.ReadFile(args[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	reqBody, _ := json.Marshal(map[string]string{"content": string(content)})
	doRequest(http.MethodPut, "/api/v1/pipelines/"+args[0], bytes.NewReader(reqBody))
	fmt.Printf("Updated pipeline %s\n", args[0])
}

func deletePipeline(cmd *cobra.Command, args []string) {
	doRequest(http.MethodDelete, "/api/v1/pipelines/"+args[0], nil)
	fmt.Printf("Deleted pipeline %s\n", args[0])
}

// doRequest sends an authenticated request and exits on any failure.
func doRequest(method, path string, body io.Reader) []byte {
	if serverURL == "" {
		fmt.Println("Error: Server URL is required")
		os.Exit(1)
	}

	req, err := http.NewRequest(method, strings.TrimRight(serverURL, "/")+path, body)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Org-ID", orgID)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if username != "" && password != "" {
		req.SetBasicAuth(username, password)
	} else {
		fmt.Println("Error: credentials required (use --token or --username/--password)")
		os.Exit(1)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fmt.Printf("Error: server returned %d: %s\n", resp.StatusCode, respBody)
		os.Exit(1)
	}

	return respBody
}

// loadCLIConfig loads the saved CLI configuration, if any.
func loadCLIConfig() {
	path := configPath
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".pipeliner", "cli.json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return
	}

	if serverURL == "" {
		serverURL = cfg.ServerURL
	}
	if username == "" {
		username = cfg.Username
	}
	if token == "" {
		token = cfg.Token
	}
}

// saveCLIConfig persists the CLI configuration for later invocations.
func saveCLIConfig(cfg Config) error {
	path := configPath
	if path == "" {
		dir := filepath.Join(os.Getenv("HOME"), ".pipeliner")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		path = filepath.Join(dir, "cli.json")
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
