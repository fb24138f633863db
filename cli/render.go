package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/speedrun-hq/speedrun-e2e/pkg/models"
)

var outcomeColors = map[models.Outcome]*color.Color{
	models.OutcomeSettled:   color.New(color.FgGreen),
	models.OutcomeFulfilled: color.New(color.FgRed),
	models.OutcomePending:   color.New(color.FgYellow),
	models.OutcomeFailed:    color.New(color.FgRed),
}

// printResults writes one line per transfer, in request order, followed by
// the timing details for transfers that settled.
func printResults(results []models.TransferResult) {
	for _, result := range results {
		c, ok := outcomeColors[result.Outcome]
		if !ok {
			c = color.New(color.Reset)
		}

		fmt.Printf("[%d] %s -> %s  %s %s  %s\n",
			result.Index, result.SourceChain, result.DestinationChain,
			result.Amount, result.Asset, c.Sprint(string(result.Outcome)))

		if result.IntentID != "" {
			fmt.Printf("    intent %s (tx %s)\n", result.IntentID, result.InitiateTx)
		}
		if result.Outcome == models.OutcomeSettled {
			fmt.Printf("    fulfill %s, settle %s, total %s\n",
				result.TimeToFulfill, result.TimeToSettle, result.TotalTime)
		}
		if result.Message != "" {
			fmt.Printf("    %s\n", result.Message)
		}
	}
}
