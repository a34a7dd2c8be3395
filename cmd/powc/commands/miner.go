package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/nknorg/powledger/api/client"
	"github.com/nknorg/powledger/api/common"
	"github.com/nknorg/powledger/pow"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// minerCmd represents the miner command
var minerCmd = &cobra.Command{
	Use:   "miner",
	Short: "mine externally using getwork and submitwork",
	Long:  "Fetches work from the node, searches a proof locally and submits it. Rewards go to --address.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		return minerAction(ctx)
	},
}

var (
	rewardAddress string
	rounds        int
	pollInterval  time.Duration
)

func init() {
	rootCmd.AddCommand(minerCmd)

	minerCmd.Flags().StringVarP(&rewardAddress, "address", "a", "", "reward recipient")
	minerCmd.Flags().IntVarP(&rounds, "rounds", "n", 0, "number of blocks to mine, 0 mines until interrupted")
	minerCmd.Flags().DurationVar(&pollInterval, "poll", 2*time.Second, "interval to check whether the head moved")
	minerCmd.MarkFlagRequired("address")
}

func minerAction(ctx context.Context) error {
	c := newClient()

	for mined := 0; rounds == 0 || mined < rounds; {
		work, err := c.GetWork(ctx)
		if err != nil {
			return err
		}

		spinner, _ := pterm.DefaultSpinner.Start("Mining on top of block ", work.LastIndex)
		proof, err := mineWork(ctx, c, work)
		if err != nil {
			spinner.Stop()
			if ctx.Err() != nil {
				pterm.Info.Printfln("Stopped after %d blocks", mined)
				return nil
			}
			if errors.Is(err, errHeadMoved) {
				pterm.Warning.Printfln("Block %d is no longer the head, fetching new work", work.LastIndex)
				continue
			}
			return err
		}

		b, ok, err := c.SubmitWork(ctx, work.LastIndex, proof, rewardAddress)
		if err != nil {
			spinner.Fail(err.Error())
			return err
		}
		if !ok {
			spinner.Warning("Proof ", proof, " was not accepted")
			continue
		}

		mined++
		spinner.Success("Forged block ", b.Index, " with proof ", b.Proof)
	}

	return nil
}

var errHeadMoved = errors.New("head moved")

// mineWork searches a proof for work and gives up once the head of the node
// no longer matches it.
func mineWork(ctx context.Context, c *client.Client, work *common.WorkResponse) (uint64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	moved := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				current, err := c.GetWork(ctx)
				if err != nil {
					continue
				}
				if current.LastIndex != work.LastIndex || current.LastHash != work.LastHash {
					close(moved)
					cancel()
					return
				}
			}
		}
	}()

	proof, err := pow.MineContext(ctx, work.LastProof, work.LastHash)
	if err != nil {
		select {
		case <-moved:
			return 0, errHeadMoved
		default:
		}
		return 0, err
	}
	return proof, nil
}
