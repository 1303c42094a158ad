package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/streamio/streamio/config"
	"github.com/streamio/streamio/filesystem"
	"github.com/streamio/streamio/playlist"
	"github.com/streamio/streamio/util"
)

func init() {
	rootCmd.AddCommand(rewriteCmd)
	rewriteCmd.Flags().StringP("base", "b", "", "URL the playlist was fetched from")
	rewriteCmd.Flags().String("web-base", "", "Origin child URIs are rewritten against (defaults to the bind address)")
	lo.Must0(rewriteCmd.MarkFlagRequired("base"))
}

// rewriteCmd applies the playlist rewrite to a local file or stdin.
var rewriteCmd = &cobra.Command{
	Use:   "rewrite [file]",
	Short: "Rewrite a playlist so its URIs route through the side-car",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			base = lo.Must(cmd.Flags().GetString("base"))
			web  = lo.Must(cmd.Flags().GetString("web-base"))
		)

		if web == "" {
			addr, err := config.ListenAddr()
			handleErr(err)
			web = "http://" + addr
		}

		var in io.Reader = os.Stdin
		if len(args) == 1 {
			f, err := filesystem.API().Open(args[0])
			handleErr(err)
			defer util.Ignore(f.Close)
			in = f
		}

		data, err := io.ReadAll(in)
		handleErr(err)
		if len(data) == 0 {
			handleErr(errors.New("empty playlist"))
		}

		out, err := playlist.Rewrite(string(data), base, web)
		handleErr(err)
		fmt.Print(out)
	},
}
