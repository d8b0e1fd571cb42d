package main

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"crm-ev-sync/src/calc"
	"crm-ev-sync/src/config"
	"crm-ev-sync/src/services"
	"crm-ev-sync/src/utils"
)

type RunArgs struct {
	ListEntryID string
	DryRun      bool
}

type RunResult struct {
	ListEntryID string      `json:"listEntryId"`
	Min         interface{} `json:"min"`
	Max         interface{} `json:"max"`
	P           interface{} `json:"p"`
	EV          int         `json:"ev"`
	Persisted   interface{} `json:"persisted,omitempty"`
	DryRun      bool        `json:"dryRun"`
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/recompute_ev/main.go --list-entry-id 42",
	Short: "Recompute and write the expected value for a single list entry",
	Run: func(cmd *cobra.Command, args []string) {
		listEntryID, err := cmd.Flags().GetString("list-entry-id")
		if err != nil {
			log.Fatalf("error getting list-entry-id: %v", err)
		}

		dryRun, err := cmd.Flags().GetBool("dry-run")
		if err != nil {
			log.Fatalf("error getting dry-run: %v", err)
		}

		if result, err := Run(RunArgs{
			ListEntryID: listEntryID,
			DryRun:      dryRun,
		}); err != nil {
			log.Errorf("Error: %v", err)
		} else {
			resultJSON, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				log.Errorf("Failed to marshal result: %v", err)
			} else {
				fmt.Println(string(resultJSON))
			}
		}
	},
}

func Run(args RunArgs) (RunResult, error) {
	if err := utils.InitEnvironmentVariables(); err != nil {
		log.Warnf("Run: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: failed to load config: %w", err)
	}

	if cfg.APIToken == "" {
		return RunResult{}, fmt.Errorf("Run: missing CRM_API_TOKEN environment variable")
	}

	ctx := context.Background()
	crm := services.NewCRMClient(cfg.APIBaseURL, cfg.APIToken)

	snapshot, err := crm.FetchFieldValues(ctx, args.ListEntryID)
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: failed to fetch field values: %w", err)
	}

	minVal := snapshot[cfg.MinFieldID]
	maxVal := snapshot[cfg.MaxFieldID]
	likelihood := snapshot[cfg.LikelihoodFieldID]

	result := RunResult{
		ListEntryID: args.ListEntryID,
		Min:         minVal,
		Max:         maxVal,
		P:           likelihood,
		EV:          calc.ComputeEV(minVal, maxVal, likelihood),
		DryRun:      args.DryRun,
	}

	if args.DryRun {
		return result, nil
	}

	writeResult, err := crm.PostFieldValue(ctx, args.ListEntryID, cfg.EVFieldID, result.EV)
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: failed to post expected value: %w", err)
	}

	if !writeResult.OK {
		return RunResult{}, fmt.Errorf("Run: write failed with status %d: %s", writeResult.Status, writeResult.Data)
	}

	result.Persisted = crm.VerifyFieldValue(ctx, args.ListEntryID, cfg.EVFieldID, services.VerifyMaxAttempts, services.VerifyBaseDelay)

	return result, nil
}

func main() {
	runCmd.Flags().String("list-entry-id", "", "The list entry to recompute")
	runCmd.Flags().Bool("dry-run", false, "Compute the expected value without writing it back")
	runCmd.MarkFlagRequired("list-entry-id")

	runCmd.Execute()
}
