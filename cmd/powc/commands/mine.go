package commands

import (
	"github.com/spf13/cobra"
)

// mineCmd represents the mine command
var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "ask the node to mine a block",
	Long:  "Asks the node to mine the next block. The reward goes to the node itself.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext()
		defer cancel()

		resp, err := newClient().Mine(ctx)
		if err != nil {
			return err
		}
		return FormatOutput(resp)
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
}
