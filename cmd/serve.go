package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/streamio/streamio/color"
	"github.com/streamio/streamio/config"
	"github.com/streamio/streamio/constant"
	"github.com/streamio/streamio/icon"
	"github.com/streamio/streamio/key"
	"github.com/streamio/streamio/network"
	"github.com/streamio/streamio/resolver"
	"github.com/streamio/streamio/server"
	"github.com/streamio/streamio/style"
)

func init() {
	rootCmd.AddCommand(serveCmd)

	rootCmd.PersistentFlags().String("host", "", "Loopback host to bind")
	lo.Must0(viper.BindPFlag(key.ServerHost, rootCmd.PersistentFlags().Lookup("host")))

	rootCmd.PersistentFlags().IntP("port", "p", 0, "Port to bind")
	lo.Must0(viper.BindPFlag(key.ServerPort, rootCmd.PersistentFlags().Lookup("port")))
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the loopback HTTP side-car (default)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func runServe() {
	handleErr(config.Check())

	addr, err := config.ListenAddr()
	handleErr(err)

	clients := network.NewSet(config.Timeout(), viper.GetBool(key.HTTPTLSFingerprint))
	srv := server.New(resolver.FromConfig(clients), clients)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf(
		"%s %s %s on %s\n",
		icon.Get(icon.Server),
		style.Title(constant.Streamio),
		style.Faint(constant.Version),
		style.Fg(color.Cyan)("http://"+addr),
	)
	handleErr(srv.ListenAndServe(ctx, addr))
}
