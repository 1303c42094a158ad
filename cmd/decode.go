package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/streamio/streamio/color"
	"github.com/streamio/streamio/decoder"
	"github.com/streamio/streamio/icon"
	"github.com/streamio/streamio/key"
	"github.com/streamio/streamio/style"
)

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().BoolP("list", "l", false, "List the registry markers and exit")
	decodeCmd.Flags().BoolP("raw", "r", false, "Print the raw decoder output without candidate selection or host substitution")
}

// decodeCmd runs one registry entry against a ciphertext copied from a page.
var decodeCmd = &cobra.Command{
	Use:   "decode [marker] [ciphertext]",
	Short: "Decode a hidden-element payload with the registry",
	Args:  cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("list")) {
			fmt.Println(markerTable())
			return
		}

		if len(args) != 2 {
			handleErr(errors.New("marker and ciphertext are required"))
		}
		marker, ciphertext := args[0], args[1]

		registry := decoder.New(viper.GetString(key.UpstreamStreamHost))
		entry, ok := registry.Lookup(marker)
		if !ok {
			handleErr(fmt.Errorf("no decoder for marker %q", marker))
		}

		if lo.Must(cmd.Flags().GetBool("raw")) {
			plain, err := entry.Decode(ciphertext)
			handleErr(err)
			fmt.Println(plain)
			return
		}

		link, err := registry.Decode(marker, ciphertext)
		handleErr(err)
		fmt.Printf("%s %s\n", style.Fg(color.Success)(icon.Get(icon.Link)), link)
	},
}

// markerTable lays out keys and markers in two columns. lipgloss measures
// cells without their escape sequences, so colour does not skew alignment.
func markerTable() string {
	keys := []string{style.Bold("KEY")}
	markers := []string{style.Bold("MARKER")}
	for _, e := range decoder.Entries() {
		keys = append(keys, e.Key)
		markers = append(markers, style.Fg(color.Purple)(e.Marker()))
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		style.New().PaddingRight(2).Render(lipgloss.JoinVertical(lipgloss.Left, keys...)),
		lipgloss.JoinVertical(lipgloss.Left, markers...),
	)
}
