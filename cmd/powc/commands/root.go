package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/nknorg/powledger/api/client"
	"github.com/nknorg/powledger/config"
	"github.com/spf13/cobra"
)

// Globals
var (
	ip      string
	port    string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:     "powc",
	Version: config.Version,
	Short:   "powc - A cli tool for the proof of work ledger",
	Long:    "",
}

func RootCmd() *cobra.Command {
	return rootCmd
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&ip, "ip", "localhost", "node's ip address")
	rootCmd.PersistentFlags().StringVar(&port, "port", strconv.Itoa(int(config.Parameters.HttpRestPort)), "node's REST port")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "timeout of a single request")
}

func Address() string {
	return "http://" + net.JoinHostPort(ip, port)
}

func newClient() *client.Client {
	return client.NewClient(Address())
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func FormatOutput(v interface{}) error {
	o, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	err = json.Indent(&out, o, "", "\t")
	if err != nil {
		return err
	}
	out.Write([]byte("\n"))
	_, err = out.WriteTo(os.Stdout)

	return err
}
