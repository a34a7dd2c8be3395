package commands

import (
	"github.com/spf13/cobra"
)

// txCmd represents the tx command
var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "submit a transaction",
	Long:  "Adds a transaction to the pending pool of the node.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext()
		defer cancel()

		resp, err := newClient().NewTransaction(ctx, sender, recipient, amount)
		if err != nil {
			return err
		}
		return FormatOutput(resp)
	},
}

var (
	sender    string
	recipient string
	amount    float64
)

func init() {
	rootCmd.AddCommand(txCmd)

	txCmd.Flags().StringVarP(&sender, "sender", "s", "", "sender")
	txCmd.Flags().StringVarP(&recipient, "recipient", "r", "", "recipient")
	txCmd.Flags().Float64VarP(&amount, "amount", "a", 0, "amount")
	txCmd.MarkFlagRequired("sender")
	txCmd.MarkFlagRequired("recipient")
	txCmd.MarkFlagRequired("amount")
}
