package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/streamio/streamio/config"
	"github.com/streamio/streamio/key"
	"github.com/streamio/streamio/network"
	"github.com/streamio/streamio/resolver"
	"github.com/streamio/streamio/server"
	"github.com/streamio/streamio/source"
)

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().String("id", "", "Catalog identifier, e.g. tt1375666")
	resolveCmd.Flags().StringP("type", "t", string(source.Movie), "Title type (movie, tv)")
	resolveCmd.Flags().Uint32P("season", "s", 0, "Season number (tv only)")
	resolveCmd.Flags().Uint32P("episode", "e", 0, "Episode number (tv only)")
	resolveCmd.Flags().String("web-base", "", "Origin child URIs are rewritten against (defaults to the bind address)")
	resolveCmd.Flags().BoolP("url-only", "u", false, "Print the recovered stream URL without fetching the playlist")
	resolveCmd.Flags().BoolP("json", "j", false, "Print the result as JSON")

	lo.Must0(resolveCmd.RegisterFlagCompletionFunc("type", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{string(source.Movie), string(source.TV)}, cobra.ShellCompDirectiveNoFileComp
	}))

	resolveCmd.AddCommand(resolveSchemaCmd)
	resolveSchemaCmd.Flags().BoolP("response", "r", false, "Schema of the /extract response instead of the request")
	resolveSchemaCmd.Flags().Bool("result", false, "Schema of the resolve --json output")
	resolveSchemaCmd.MarkFlagsMutuallyExclusive("response", "result")
}

// resolveCmd runs the resolve pipeline in-process, the same way POST /extract does.
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a title into a rewritten HLS playlist without starting the server",
	Example: "  streamio resolve --id tt1375666\n" +
		"  streamio resolve --id tt0944947 --type tv -s 1 -e 2 --json",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		req, err := requestFromFlags(cmd)
		handleErr(err)
		handleErr(req.Validate())

		base := lo.Must(cmd.Flags().GetString("web-base"))
		if base == "" {
			addr, err := config.ListenAddr()
			handleErr(err)
			base = "http://" + addr
		}

		clients := network.NewSet(config.Timeout(), viper.GetBool(key.HTTPTLSFingerprint))
		res := resolver.FromConfig(clients)
		ctx := context.Background()

		if lo.Must(cmd.Flags().GetBool("url-only")) {
			link, method, err := res.StreamURL(ctx, req)
			handleErr(err)
			if lo.Must(cmd.Flags().GetBool("json")) {
				handleErr(json.NewEncoder(os.Stdout).Encode(resolver.Result{StreamURL: link, Method: method}))
				return
			}
			fmt.Println(link)
			return
		}

		result, err := res.Resolve(ctx, req, base)
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(os.Stdout).Encode(result))
			return
		}
		fmt.Print(result.Playlist)
	},
}

func requestFromFlags(cmd *cobra.Command) (source.Request, error) {
	id := lo.Must(cmd.Flags().GetString("id"))
	if id == "" {
		return source.Request{}, errors.New("--id is required")
	}

	kind, err := source.ParseKind(lo.Must(cmd.Flags().GetString("type")))
	if err != nil {
		return source.Request{}, err
	}

	optional := func(name string) mo.Option[uint32] {
		if !cmd.Flags().Changed(name) {
			return mo.None[uint32]()
		}
		return mo.Some(lo.Must(cmd.Flags().GetUint32(name)))
	}

	return source.Request{
		ID:      id,
		Kind:    kind,
		Season:  optional("season"),
		Episode: optional("episode"),
	}, nil
}

var resolveSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the resolve request, response or result",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			return t.Name()
		}

		var schema *jsonschema.Schema
		switch {
		case lo.Must(cmd.Flags().GetBool("response")):
			schema = reflector.Reflect(&server.ExtractResponse{})
		case lo.Must(cmd.Flags().GetBool("result")):
			schema = reflector.Reflect(&resolver.Result{})
		default:
			schema = reflector.Reflect(&server.ExtractRequest{})
		}

		handleErr(json.NewEncoder(os.Stdout).Encode(schema))
	},
}
