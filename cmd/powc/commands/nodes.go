package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// nodesCmd represents the nodes command
var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "list, register and resolve peers",
	Long:  "Lists the peers of the node. With --register adds peers, with --resolve runs conflict resolution against them.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return nodesAction()
	},
}

var (
	register string
	resolve  bool
)

func init() {
	rootCmd.AddCommand(nodesCmd)

	nodesCmd.Flags().StringVarP(&register, "register", "r", "", "peer addresses to register, split by comma")
	nodesCmd.Flags().BoolVar(&resolve, "resolve", false, "adopt the longest valid chain among peers")
	nodesCmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "print the resolved chain as a table")
}

func nodesAction() error {
	ctx, cancel := requestContext()
	defer cancel()

	c := newClient()

	if len(register) > 0 {
		resp, err := c.RegisterNodes(ctx, strings.Split(register, ","))
		if err != nil {
			return err
		}
		if err := FormatOutput(resp); err != nil {
			return err
		}
	}

	if resolve {
		resp, err := c.Resolve(ctx)
		if err != nil {
			return err
		}
		if pretty {
			pterm.Info.Println(resp.Message)
			return renderChain(resp.Chain)
		}
		return FormatOutput(resp)
	}

	if len(register) > 0 {
		return nil
	}

	resp, err := c.Nodes(ctx)
	if err != nil {
		return err
	}
	return FormatOutput(resp)
}
