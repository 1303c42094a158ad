package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/streamio/streamio/constant"
	"github.com/streamio/streamio/filesystem"
	"github.com/streamio/streamio/icon"
	"github.com/streamio/streamio/util"
	"github.com/streamio/streamio/where"
)

// clearTarget is a set of files that can be removed on request.
type clearTarget struct {
	name    string
	argLong string
	// files lists what to delete; directories themselves are kept.
	files func() ([]string, error)
}

var clearTargets = []clearTarget{
	{"log files", "logs", func() ([]string, error) {
		return afero.Glob(filesystem.API(), filepath.Join(where.Logs(), "*.log"))
	}},
	{"config file", "config", func() ([]string, error) {
		path := filepath.Join(where.Config(), constant.Streamio+".toml")
		if ok, err := afero.Exists(filesystem.API(), path); err != nil || !ok {
			return nil, err
		}
		return []string{path}, nil
	}},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		clearCmd.Flags().Bool(target.argLong, false, fmt.Sprintf("clear %s", target.name))
	}
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove log files or the config file",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool

		for _, target := range clearTargets {
			if !lo.Must(cmd.Flags().GetBool(target.argLong)) {
				continue
			}
			anyCleared = true

			e := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), target.name))
			files, err := target.files()
			e()
			handleErr(err)

			for _, f := range files {
				if err := filesystem.API().Remove(f); err != nil && !os.IsNotExist(err) {
					handleErr(err)
				}
			}
			fmt.Printf("%s %s cleared (%s)\n", icon.Get(icon.Success), util.Capitalize(target.name), util.Quantify(len(files), "file", "files"))
		}

		if !anyCleared {
			handleErr(cmd.Help())
		}
	},
}
