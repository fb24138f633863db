package cli

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/speedrun-hq/speedrun-e2e/pkg/chains"
	"github.com/spf13/cobra"
)

var balancesCMD = &cobra.Command{
	Use:   "balances",
	Short: "Print wallet token balances on every configured chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		harness, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer harness.Close()

		chainIDs := make([]int, 0, len(harness.clients))
		for chainID := range harness.clients {
			chainIDs = append(chainIDs, chainID)
		}
		sort.Ints(chainIDs)

		for _, chainID := range chainIDs {
			client := harness.clients[chainID]
			fmt.Printf("%s (chain %d), wallet %s:\n", client.Name, chainID, client.Sender().Hex())

			for _, symbol := range []string{"USDC", "USDT"} {
				balance, err := client.TokenBalance(ctx, symbol, client.Sender())
				if err != nil {
					continue
				}
				decimals, err := client.TokenDecimals(symbol)
				if err != nil {
					continue
				}
				whole, err := chains.StandardizedAmount(balance, decimals)
				if err != nil {
					continue
				}
				fmt.Printf("  %-5s %s (%.6f)\n", symbol, balance.String(), whole)
			}
		}
		return nil
	},
}
