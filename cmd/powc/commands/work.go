package commands

import (
	"github.com/spf13/cobra"
)

// workCmd represents the work command
var workCmd = &cobra.Command{
	Use:   "work",
	Short: "show or change mining work",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		return workAction(cmd.Flags().Changed("setdiff"))
	},
}

var (
	difficulty bool
	setDiff    int
)

func init() {
	rootCmd.AddCommand(workCmd)

	workCmd.Flags().BoolVarP(&difficulty, "difficulty", "d", false, "show the advisory difficulty and block time")
	workCmd.Flags().IntVar(&setDiff, "setdiff", 0, "set the advisory difficulty")
}

func workAction(changeDiff bool) error {
	ctx, cancel := requestContext()
	defer cancel()

	c := newClient()

	if changeDiff {
		resp, err := c.SetDifficulty(ctx, setDiff)
		if err != nil {
			return err
		}
		return FormatOutput(resp)
	}

	if difficulty {
		resp, err := c.GetDifficulty(ctx)
		if err != nil {
			return err
		}
		return FormatOutput(resp)
	}

	resp, err := c.GetWork(ctx)
	if err != nil {
		return err
	}
	return FormatOutput(resp)
}
