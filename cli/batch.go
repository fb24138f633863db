package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/speedrun-hq/speedrun-e2e/pkg/config"
	"github.com/speedrun-hq/speedrun-e2e/pkg/models"
	"github.com/spf13/cobra"
)

var batchFile string

var batchCMD = &cobra.Command{
	Use:   "batch",
	Short: "Drive a batch of transfers concurrently",
	Long: "Reads an ordered list of transfers from a JSON file and drives " +
		"them all at once. Transfers sharing a source chain take turns " +
		"submitting; everything else runs in parallel. Results are printed " +
		"in file order.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		specs, err := config.LoadBatchFile(batchFile)
		if err != nil {
			return err
		}

		reqs := make([]models.TransferRequest, len(specs))
		for i, spec := range specs {
			req, err := specToRequest(spec)
			if err != nil {
				return fmt.Errorf("batch entry %d: %v", i, err)
			}
			reqs[i] = req
		}

		harness, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer harness.Close()

		results := harness.orch.RunBatch(ctx, reqs)
		printResults(results)

		failed := 0
		for _, result := range results {
			if !result.Succeeded() {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d transfers did not settle", failed, len(results))
		}
		return nil
	},
}

func init() {
	batchCMD.Flags().StringVar(&batchFile, "file", "", "path to the batch JSON file")
	_ = batchCMD.MarkFlagRequired("file")
}

// specToRequest converts a validated batch entry into a transfer request.
func specToRequest(spec config.TransferSpec) (models.TransferRequest, error) {
	amount, err := parseBaseAmount(spec.Amount, "amount")
	if err != nil {
		return models.TransferRequest{}, err
	}

	fee := spec.Fee
	if fee == "" {
		fee = "0"
	}
	tip, err := parseBaseAmount(fee, "fee")
	if err != nil {
		return models.TransferRequest{}, err
	}

	req := models.TransferRequest{
		SourceChain:      spec.SourceChain,
		DestinationChain: spec.DestinationChain,
		Asset:            spec.Asset,
		Amount:           amount,
		Fee:              tip,
	}

	if spec.Receiver != "" {
		if !common.IsHexAddress(spec.Receiver) {
			return models.TransferRequest{}, fmt.Errorf("invalid receiver address: %s", spec.Receiver)
		}
		req.Receiver = common.HexToAddress(spec.Receiver)
	}

	return req, nil
}
