package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tkingovr/envgate/api"
	"github.com/tkingovr/envgate/internal/policy"
)

var (
	checkPath string
	checkAddr string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Dry-run the classification of a request",
	Long: `Check what verdict a request would receive without running the server.
The secrets file is never read.`,
	Example: `  envgate check --path /.env --addr 127.0.0.1
  envgate check --path /index.html --addr 203.0.113.7`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkPath, "path", api.ReservedPath, "raw request target")
	checkCmd.Flags().StringVar(&checkAddr, "addr", "", "source address (no port)")
	_ = checkCmd.MarkFlagRequired("addr")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	engine, err := policy.NewOPAEngine()
	if err != nil {
		return fmt.Errorf("creating policy engine: %w", err)
	}

	req := api.CheckRequest{Path: checkPath, SourceAddress: checkAddr}
	result, err := engine.Evaluate(context.Background(), &policy.EvalInput{
		Path:          req.Path,
		SourceAddress: req.SourceAddress,
	})
	if err != nil {
		return fmt.Errorf("evaluation error: %w", err)
	}

	output := api.CheckResponse{
		Verdict: result.Verdict,
		Rule:    result.Rule,
		Message: result.Message,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
