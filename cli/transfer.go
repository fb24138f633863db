package cli

import (
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/speedrun-hq/speedrun-e2e/pkg/models"
	"github.com/spf13/cobra"
)

var (
	transferFrom     string
	transferTo       string
	transferAsset    string
	transferAmount   string
	transferFee      string
	transferReceiver string
	transferSalt     int64

	swapPath         string
	swapStables      string
	swapAmountOutMin string
	swapDeadline     time.Duration
	swapGasLimit     uint64
)

var transferCMD = &cobra.Command{
	Use:   "transfer",
	Short: "Drive a single transfer end to end",
	Long: "Submits one intent on the source chain and polls the status API " +
		"until it settles, fails or the polling window closes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		harness, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer harness.Close()

		req, err := buildTransferRequest()
		if err != nil {
			return err
		}

		result := harness.orch.Run(ctx, req)
		printResults([]models.TransferResult{result})

		if !result.Succeeded() {
			return fmt.Errorf("transfer finished with outcome %q", result.Outcome)
		}
		return nil
	},
}

func init() {
	transferCMD.Flags().StringVar(&transferFrom, "from", "", "source chain name (e.g. BASE)")
	transferCMD.Flags().StringVar(&transferTo, "to", "", "destination chain name (e.g. ARBITRUM)")
	transferCMD.Flags().StringVar(&transferAsset, "asset", "USDC", "asset symbol")
	transferCMD.Flags().StringVar(&transferAmount, "amount", "", "amount in the token's smallest unit")
	transferCMD.Flags().StringVar(&transferFee, "fee", "0", "fulfiller tip in the token's smallest unit")
	transferCMD.Flags().StringVar(&transferReceiver, "receiver", "", "receiver address (defaults to the sender wallet)")
	transferCMD.Flags().Int64Var(&transferSalt, "salt", -1, "fixed intent salt (random when unset)")

	transferCMD.Flags().StringVar(&swapPath, "swap-path", "", "comma-separated token path for a destination-side swap")
	transferCMD.Flags().StringVar(&swapStables, "swap-stables", "", "comma-separated stable flags, one per path hop")
	transferCMD.Flags().StringVar(&swapAmountOutMin, "swap-amount-out-min", "0", "minimum swap output in the token's smallest unit")
	transferCMD.Flags().DurationVar(&swapDeadline, "swap-deadline", 20*time.Minute, "swap deadline relative to now")
	transferCMD.Flags().Uint64Var(&swapGasLimit, "swap-gas-limit", 0, "destination-side gas limit (chain default when 0)")

	_ = transferCMD.MarkFlagRequired("from")
	_ = transferCMD.MarkFlagRequired("to")
	_ = transferCMD.MarkFlagRequired("amount")
}

// buildTransferRequest turns the flag set into a transfer request.
func buildTransferRequest() (models.TransferRequest, error) {
	amount, err := parseBaseAmount(transferAmount, "amount")
	if err != nil {
		return models.TransferRequest{}, err
	}
	fee, err := parseBaseAmount(transferFee, "fee")
	if err != nil {
		return models.TransferRequest{}, err
	}

	req := models.TransferRequest{
		SourceChain:      transferFrom,
		DestinationChain: transferTo,
		Asset:            transferAsset,
		Amount:           amount,
		Fee:              fee,
	}

	if transferReceiver != "" {
		if !common.IsHexAddress(transferReceiver) {
			return models.TransferRequest{}, fmt.Errorf("invalid receiver address: %s", transferReceiver)
		}
		req.Receiver = common.HexToAddress(transferReceiver)
	}

	if transferSalt >= 0 {
		req.Salt = big.NewInt(transferSalt)
	}

	if swapPath != "" {
		call, err := buildCallInstruction()
		if err != nil {
			return models.TransferRequest{}, err
		}
		req.Call = call
	}

	return req, nil
}

// buildCallInstruction parses the swap flags into a call-variant payload.
func buildCallInstruction() (*models.CallInstruction, error) {
	var path []common.Address
	for _, hop := range strings.Split(swapPath, ",") {
		hop = strings.TrimSpace(hop)
		if !common.IsHexAddress(hop) {
			return nil, fmt.Errorf("invalid swap path address: %s", hop)
		}
		path = append(path, common.HexToAddress(hop))
	}

	var stables []bool
	if swapStables != "" {
		for _, flag := range strings.Split(swapStables, ",") {
			stable, err := strconv.ParseBool(strings.TrimSpace(flag))
			if err != nil {
				return nil, fmt.Errorf("invalid swap stable flag: %v", err)
			}
			stables = append(stables, stable)
		}
	} else {
		stables = make([]bool, len(path)-1)
	}

	amountOutMin, err := parseBaseAmount(swapAmountOutMin, "swap-amount-out-min")
	if err != nil {
		return nil, err
	}

	return &models.CallInstruction{
		Path:         path,
		Stables:      stables,
		AmountOutMin: amountOutMin,
		Deadline:     big.NewInt(time.Now().Add(swapDeadline).Unix()),
		GasLimit:     swapGasLimit,
	}, nil
}

// parseBaseAmount parses a decimal base-unit amount string.
func parseBaseAmount(value, name string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s: %q is not a decimal integer", name, value)
	}
	return amount, nil
}
