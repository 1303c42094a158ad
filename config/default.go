// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/streamio/streamio/color"
	"github.com/streamio/streamio/constant"
	"github.com/streamio/streamio/icon"
	"github.com/streamio/streamio/key"
	"github.com/streamio/streamio/style"
)

// Field is one setting of the side-car.
type Field struct {
	Key         string
	Value       any
	Description string

	// Accepts describes valid input for config set.
	Accepts string

	// Example, when set, formats the current value into a URL it ends up in.
	Example string

	parse func(string) (any, error)
}

// Parse converts command-line text into the value stored for the field.
func (f Field) Parse(raw string) (any, error) {
	v, err := f.parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Key, err)
	}
	return v, nil
}

// Section is the heading the field is listed under.
func (f Field) Section() string {
	prefix, _, _ := strings.Cut(f.Key, ".")
	return sectionOf[prefix]
}

// Env returns the environment variable name for this field.
func (f Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Streamio + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// Pretty returns a colored string representation of the field for display.
func (f Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// MarshalJSON includes the current value next to the default.
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Section     string `json:"section"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Accepts     string `json:"accepts"`
		Description string `json:"description"`
	}{
		Key:         f.Key,
		Section:     f.Section(),
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Accepts:     f.Accepts,
		Description: f.Description,
	})
}

func loopbackHost(s string) (any, error) {
	if !IsLoopback(s) {
		return nil, fmt.Errorf("%q is not a loopback address", s)
	}
	return s, nil
}

func port(s string) (any, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return nil, fmt.Errorf("invalid port %q", s)
	}
	return n, nil
}

func seconds(s string) (any, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("expected a positive number of seconds, got %q", s)
	}
	return n, nil
}

func boolean(s string) (any, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("expected true or false, got %q", s)
	}
	return b, nil
}

// hostname accepts a bare host such as cloudnestra.com, without scheme or path.
func hostname(s string) (any, error) {
	if s == "" || strings.ContainsAny(s, "/?#@ \t") || strings.Contains(s, "..") {
		return nil, fmt.Errorf("expected a bare host name, got %q", s)
	}
	return strings.ToLower(s), nil
}

func level(s string) (any, error) {
	l, err := logrus.ParseLevel(s)
	if err != nil {
		return nil, err
	}
	return l.String(), nil
}

func oneOf(options ...string) func(string) (any, error) {
	return func(s string) (any, error) {
		if !lo.Contains(options, s) {
			return nil, fmt.Errorf("expected one of %s, got %q", strings.Join(options, ", "), s)
		}
		return s, nil
	}
}

var sectionOf = map[string]string{
	"server":   "Server",
	"http":     "Upstream HTTP",
	"upstream": "Upstream hosts",
	"logs":     "Logging",
	"cli":      "CLI",
	"icons":    "CLI",
}

var sectionOrder = []string{"Server", "Upstream HTTP", "Upstream hosts", "Logging", "CLI"}

// Section is a titled run of related fields.
type Section struct {
	Title  string
	Fields []Field
}

// Sections groups fields in display order. Empty sections are left out.
func Sections(fields []Field) []Section {
	bySection := lo.GroupBy(fields, Field.Section)

	var out []Section
	for _, title := range sectionOrder {
		fs := bySection[title]
		if len(fs) == 0 {
			continue
		}
		sort.Slice(fs, func(i, j int) bool { return fs[i].Key < fs[j].Key })
		out = append(out, Section{Title: title, Fields: fs})
	}
	return out
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(f Field) {
		if _, exists := Default[f.Key]; exists {
			panic("Duplicate config key: " + f.Key)
		}
		Default[f.Key] = f
		EnvExposed = append(EnvExposed, f.Key)
	}

	register(Field{
		Key:         key.ServerHost,
		Value:       "127.0.0.1",
		Description: "Host the side-car binds to",
		Accepts:     "127.0.0.1, ::1, localhost or another loopback address",
		parse:       loopbackHost,
	})
	register(Field{
		Key:         key.ServerPort,
		Value:       4000,
		Description: "Port the side-car binds to. The shell must point its player at the same port",
		Accepts:     "1-65535",
		parse:       port,
	})
	register(Field{
		Key:         key.HTTPTimeout,
		Value:       15,
		Description: "Timeout applied to each scrape hop and manifest fetch. Segments are not bounded",
		Accepts:     "seconds, greater than 0",
		parse:       seconds,
	})
	register(Field{
		Key:         key.HTTPTLSFingerprint,
		Value:       true,
		Description: "Present a Chrome TLS fingerprint on scrape hops",
		Accepts:     "true, false",
		parse:       boolean,
	})
	register(Field{
		Key:         key.UpstreamEmbedHost,
		Value:       constant.EmbedHost,
		Description: "Host of the public embed page, the first hop",
		Accepts:     "bare host name",
		Example:     "https://%s/embed/movie/tt1375666",
		parse:       hostname,
	})
	register(Field{
		Key:         key.UpstreamPlayerHost,
		Value:       constant.PlayerHost,
		Description: "Host of the player pages, the second and third hops",
		Accepts:     "bare host name",
		Example:     "https://%s/prorcp/<token>",
		parse:       hostname,
	})
	register(Field{
		Key:         key.UpstreamStreamHost,
		Value:       constant.StreamHost,
		Description: "Host substituted for the {v1}..{v5} placeholders of decoded stream URLs",
		Accepts:     "bare host name",
		Example:     "https://tmstr1.%s/pl/<path>/master.m3u8",
		parse:       hostname,
	})
	register(Field{
		Key:         key.LogsWrite,
		Value:       false,
		Description: "Write logs to a daily file in the logs directory",
		Accepts:     "true, false",
		parse:       boolean,
	})
	register(Field{
		Key:         key.LogsLevel,
		Value:       "info",
		Description: "Lowest level that is logged and broadcast on the log feed",
		Accepts:     "panic, fatal, error, warn, info, debug, trace",
		parse:       level,
	})
	register(Field{
		Key:         key.LogsJson,
		Value:       false,
		Description: "Use json format for logs",
		Accepts:     "true, false",
		parse:       boolean,
	})
	register(Field{
		Key:         key.CliColored,
		Value:       true,
		Description: "Enable colored CLI output",
		Accepts:     "true, false",
		parse:       boolean,
	})
	register(Field{
		Key:         key.IconsVariant,
		Value:       "plain",
		Description: "Icons variant",
		Accepts:     strings.Join(icon.AvailableVariants(), ", "),
		parse:       oneOf(icon.AvailableVariants()...),
	})
}

// Check validates the effective value of every field after defaults, file and environment are merged.
func Check() error {
	keys := lo.Keys(Default)
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		if _, err := Default[k].Parse(fmt.Sprint(viper.Get(k))); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Set parses raw for k and stores the result in viper.
func Set(k, raw string) (any, error) {
	f, ok := Default[k]
	if !ok {
		return nil, fmt.Errorf("unknown key %s", k)
	}

	v, err := f.Parse(raw)
	if err != nil {
		return nil, err
	}

	viper.Set(k, v)
	return v, nil
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":  style.Faint,
	"purple": style.Fg(color.Purple),
	"blue":   style.Fg(color.Blue),
	"cyan":   style.Fg(color.Cyan),
	"value":  func(k string) any { return viper.Get(k) },
	"sprintf": func(format string, v any) string {
		return fmt.Sprintf(format, v)
	},
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Accepts:" }} {{ .Accepts }}
{{- if .Example }}
{{ blue "Example:" }} {{ cyan (sprintf .Example (value .Key)) }}
{{- end }}`))
