package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	httpx "llm_relay/backend/go/pkg/http"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the service is running",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := ping(cmd.Context(), newClient(), serverURL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func ping(ctx context.Context, client *httpx.Client, server string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(server, "/")+"/", nil)
	if err != nil {
		return "", err
	}
	var out welcomeResponse
	if err := doJSON(client, req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
