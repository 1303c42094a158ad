// Package cmd implements the command-line interface of the streamio side-car.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/streamio/streamio/color"
	"github.com/streamio/streamio/constant"
	"github.com/streamio/streamio/icon"
	"github.com/streamio/streamio/key"
	"github.com/streamio/streamio/log"
	"github.com/streamio/streamio/style"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the icon variant (emoji, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().Int("timeout", 0, "Upstream request timeout in seconds")
	lo.Must0(viper.BindPFlag(key.HTTPTimeout, rootCmd.PersistentFlags().Lookup("timeout")))

	rootCmd.PersistentFlags().Bool("fingerprint", true, "Present a Chrome TLS fingerprint while scraping")
	lo.Must0(viper.BindPFlag(key.HTTPTLSFingerprint, rootCmd.PersistentFlags().Lookup("fingerprint")))

	rootCmd.PersistentFlags().String("log-level", "", "Log level (panic, fatal, error, warn, info, debug, trace)")
	lo.Must0(viper.BindPFlag(key.LogsLevel, rootCmd.PersistentFlags().Lookup("log-level")))

	// Flag values only reach viper once parsing is done.
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		handleErr(log.Setup())
	}
}

// rootCmd starts the side-car when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   constant.Streamio,
	Short: "Loopback side-car that resolves embed pages into playable HLS streams",
	Long: style.Title(constant.Streamio) + "\n" +
		style.New().Italic(true).Foreground(color.HiCyan).Render("    - Resolves embed pages into HLS playlists and relays their segments on loopback"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		runServe()
	},
}

// Execute runs the command tree.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
