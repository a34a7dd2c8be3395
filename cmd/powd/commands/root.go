package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nknorg/powledger/api/httprestful"
	"github.com/nknorg/powledger/config"
	"github.com/nknorg/powledger/node"
	"github.com/nknorg/powledger/util/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "powd",
	Version: config.Version,
	Short:   "powd - A proof of work ledger node",
	Long:    "",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := powMain(); err != nil {
			log.Error(err)
			return err
		}
		return nil
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().StringVar(&config.ConfigFile, "config", "", "config file name")
	rootCmd.Flags().StringVar(&config.LogPath, "log", "", "directory where your log file will be generated")
	rootCmd.Flags().StringVar(&config.NodeID, "id", "", "node identity, random if empty")
	rootCmd.Flags().StringVar(&config.SeedList, "peers", "", "peer node addresses to register, multiple peers should be split by comma")
	rootCmd.Flags().UintVarP(&config.HttpRestPort, "port", "p", 0, "port of the REST API")
}

func powMain() error {
	signalChan := make(chan os.Signal, 1)

	err := config.Init()
	if err != nil {
		return err
	}

	err = log.Init()
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)

	localNode, err := node.NewLocalNode(config.Parameters)
	if err != nil {
		return err
	}
	defer localNode.Stop()

	err = localNode.Start()
	if err != nil {
		return err
	}

	server := httprestful.NewServer(localNode, config.Parameters)
	err = server.Start()
	if err != nil {
		return err
	}

	log.Infof("Node %s serving on %s", localNode.GetID(), server.Addr())

	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	for range signalChan {
		fmt.Printf("\nReceived an interrupt, stopping services...\n")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := server.Stop(ctx); err != nil {
			log.Errorf("Stop REST server error: %v", err)
		}
		cancel()
		return nil
	}

	return nil
}
