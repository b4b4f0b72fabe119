package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents a login response.
type LoginResponse struct {
	Token     string `json:"token"`
	AccountID string `json:"account_id"`
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the server",
	Run:   login,
}

func login(cmd *cobra.Command, args []string) {
	if serverURL == "" {
		fmt.Println("Error: Server URL is required")
		os.Exit(1)
	}

	if username == "" {
		fmt.Print("Username: ")
		fmt.Scanln(&username)
	}
	if password == "" {
		fmt.Print("Password: ")
		fmt.Scanln(&password)
	}

	reqBody, err := json.Marshal(LoginRequest{Username: username, Password: password})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	resp, err := http.Post(
		fmt.Sprintf("%s/api/v1/login", serverURL),
		"application/json",
		bytes.NewBuffer(reqBody),
	)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Error: %s\n", body)
		os.Exit(1)
	}

	var loginResp LoginResponse
	if err := json.Unmarshal(body, &loginResp); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if err := saveCLIConfig(Config{
		ServerURL: serverURL,
		Username:  username,
		JWTToken:  loginResp.Token,
		Token:     token,
	}); err != nil {
		fmt.Printf("Warning: Failed to save config: %v\n", err)
	}

	fmt.Println("Login successful")
}

// createAccount registers a new account and stores its API token.
func createAccount(cmd *cobra.Command, args []string) {
	if serverURL == "" {
		fmt.Println("Error: Server URL is required")
		os.Exit(1)
	}

	if username == "" {
		fmt.Print("Username: ")
		fmt.Scanln(&username)
	}
	if password == "" {
		fmt.Print("Password: ")
		fmt.Scanln(&password)
	}

	reqBody, err := json.Marshal(LoginRequest{Username: username, Password: password})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	resp, err := http.Post(
		fmt.Sprintf("%s/api/v1/accounts", serverURL),
		"application/json",
		bytes.NewBuffer(reqBody),
	)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if resp.StatusCode != http.StatusCreated {
		fmt.Printf("Error: %s\n", body)
		os.Exit(1)
	}

	var account struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(body, &account); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created account %s (%s)\n", account.Username, account.ID)
}
