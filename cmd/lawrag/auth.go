package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"thai-legal-rag/internal/drive"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize read-only access to Google Drive",
	Long: `Prints the OAuth consent URL for the client secret in GOOGLE_CREDENTIALS_JSON,
reads the authorization code and stores the token at GOOGLE_TOKEN_JSON.`,
	Args: cobra.NoArgs,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, _ []string) error {
	creds := drive.CredentialsFromEnv()
	url, err := creds.AuthURL()
	if err != nil {
		return err
	}
	cmd.Println("Open this URL in a browser and paste the code below:")
	cmd.Println(url)
	cmd.Print("Code: ")

	code, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && strings.TrimSpace(code) == "" {
		return fmt.Errorf("read code: %w", err)
	}
	if err := creds.Exchange(cmd.Context(), strings.TrimSpace(code)); err != nil {
		return err
	}
	cmd.Printf("Token saved to %s\n", creds.TokenPath)
	return nil
}
