package commands

import (
	"strconv"

	"github.com/nknorg/powledger/block"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// chainCmd represents the chain command
var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "show the chain of a node",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		return chainAction()
	},
}

var pretty bool

func init() {
	rootCmd.AddCommand(chainCmd)

	chainCmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "print the chain as a table")
}

func chainAction() error {
	ctx, cancel := requestContext()
	defer cancel()

	resp, err := newClient().GetChain(ctx)
	if err != nil {
		return err
	}

	if !pretty {
		return FormatOutput(resp)
	}

	return renderChain(resp.Chain)
}

func renderChain(blocks []*block.Block) error {
	data := pterm.TableData{{"Index", "Timestamp", "Txns", "Proof", "Previous Hash", "Hash"}}
	for _, b := range blocks {
		data = append(data, []string{
			strconv.FormatUint(b.Index, 10),
			strconv.FormatFloat(b.Timestamp, 'f', 3, 64),
			strconv.Itoa(len(b.Transactions)),
			strconv.FormatUint(b.Proof, 10),
			shortHash(b.PreviousHash),
			shortHash(b.Hash()),
		})
	}

	err := pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	if err != nil {
		return err
	}
	pterm.Info.Printfln("Chain length %d", len(blocks))
	return nil
}

func shortHash(h string) string {
	if len(h) <= 16 {
		return h
	}
	return h[:16] + "..."
}
