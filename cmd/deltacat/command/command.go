// Package command implements the deltacat command line.
package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/IvanPartsunev/deltacat-cli/internal/catalog"
	"github.com/IvanPartsunev/deltacat-cli/internal/console"
	"github.com/IvanPartsunev/deltacat-cli/internal/logging"
	"github.com/IvanPartsunev/deltacat-cli/internal/pqutil"
	"github.com/IvanPartsunev/deltacat-cli/internal/session"
	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/rs/zerolog/log"
	"github.com/willabides/kongplete"
)

type Globals struct {
	ConfigFile      string `help:"Path to the session file.  Defaults to ~/${sessionFile}." env:"DELTACAT_CLI_CONFIG" type:"path" placeholder:"PATH" predictor:"path"`
	ConfigErrorMode string `help:"How to handle an unreadable session file.  Possible values: ${enum}." enum:"${configErrorModes}" default:"warn" env:"DELTACAT_CLI_CONFIG_ERROR_MODE"`
	LogLevel        string `help:"Diagnostic log level.  Possible values: ${enum}." enum:"${logLevels}" default:"${defaultLogLevel}" env:"DELTACAT_CLI_LOG_LEVEL"`
	EmojiStyle      string `help:"Symbols used in the output.  Possible values: ${enum}." enum:"${emojiStyles}" default:"${defaultEmojiStyle}" env:"DELTACAT_CLI_EMOJI_STYLE"`
	NoColor         bool   `help:"Disable colored output.  Also set by a non-empty NO_COLOR."`
}

type CLI struct {
	Globals

	ShowVersion kong.VersionFlag `name:"version" short:"v" help:"Show the version and exit."`

	Catalog     CatalogCmd                   `cmd:"" help:"Catalog operations."`
	Namespace   NamespaceCmd                 `cmd:"" help:"Namespace operations.  Requires a current catalog."`
	Table       TableCmd                     `cmd:"" help:"Table operations.  Requires a current catalog."`
	Version     VersionCmd                   `cmd:"" help:"Print the version of this program."`
	Completions kongplete.InstallCompletions `cmd:"" help:"Install or uninstall shell completions."`
}

// Runtime is bound to every command's Run method.
type Runtime struct {
	Context context.Context
	Console *console.Console
	Session *session.Context
	Version *VersionInfo
}

// Catalog returns the handle of the current catalog.
func (r *Runtime) Catalog() (*catalog.Catalog, error) {
	return r.Session.Catalog(r.Context)
}

type CommandError struct {
	Operation string
	Err       error
}

func NewCommandError(operation string, err error) *CommandError {
	return &CommandError{Operation: operation, Err: err}
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("error %s: %s", e.Operation, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

var errAborted = errors.New("aborted")

const notInitializedHint = "Create it with: deltacat catalog init"

type exitStatus int

// Execute parses the arguments, runs the selected command and returns the
// process exit code.
func Execute(args []string, info *VersionInfo) (code int) {
	defer func() {
		if r := recover(); r != nil {
			status, ok := r.(exitStatus)
			if !ok {
				panic(r)
			}
			code = int(status)
		}
	}()

	cli := &CLI{}
	parser := kong.Must(
		cli,
		kong.Name("deltacat"),
		kong.Description("A command line interface for working with deltacat catalogs.  Use 'deltacat catalog init' to get started."),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{
			"version":             "deltacat version: " + info.Version,
			"sessionFile":         session.DefaultFileName,
			"lifecycleStates":     strings.Join(catalog.LifecycleStates, ", "),
			"readOptimization":    strings.Join(catalog.ReadOptimizationLevels, ", "),
			"schemaEvolution":     strings.Join(catalog.SchemaEvolutionModes, ", "),
			"schemaConsistency":   strings.Join(catalog.SchemaConsistencyTypes, ", "),
			"defaultTableVersion": catalog.DefaultTableVersion,
			"configErrorModes":    strings.Join(session.ErrorModes, ", "),
			"logLevels":           strings.Join(logging.Levels, ", "),
			"defaultLogLevel":     logging.DefaultLevel,
			"emojiStyles":         strings.Join(console.Styles, ", "),
			"defaultEmojiStyle":   console.DefaultStyle,
			"formats":             strings.Join(console.Formats, ", "),
			"compressionCodecs":   strings.Join(pqutil.CompressionCodecs, ", "),
			"defaultCompression":  pqutil.DefaultCompression,
		},
		kong.Writers(os.Stdout, os.Stderr),
		kong.Exit(func(status int) {
			panic(exitStatus(status))
		}),
	)
	kongplete.Complete(parser, kongplete.WithPredictor("path", complete.PredictFiles("*")))

	ctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		var parseErr *kong.ParseError
		if errors.As(err, &parseErr) {
			_ = parseErr.Context.PrintUsage(true)
		}
		return 1
	}

	noColor := cli.NoColor || os.Getenv("NO_COLOR") != ""
	if err := logging.Setup(os.Stderr, cli.LogLevel, noColor); err != nil {
		parser.Errorf("%s", err)
		return 1
	}

	out, err := console.New(console.Options{Style: cli.EmojiStyle, NoColor: noColor})
	if err != nil {
		parser.Errorf("%s", err)
		return 1
	}

	sessionPath := cli.ConfigFile
	if sessionPath == "" {
		sessionPath, err = session.DefaultPath()
		if err != nil {
			out.Fail("Error: %s", err)
			return 1
		}
	}
	log.Debug().Str("path", sessionPath).Str("mode", cli.ConfigErrorMode).Msg("using session file")

	sessionContext := session.NewContext(session.NewStore(sessionPath, session.ErrorMode(cli.ConfigErrorMode)), nil)
	defer sessionContext.Close()

	runtime := &Runtime{
		Context: context.Background(),
		Console: out,
		Session: sessionContext,
		Version: info,
	}
	if err := ctx.Run(runtime); err != nil {
		report(out, err)
		return 1
	}
	return 0
}

func report(out *console.Console, err error) {
	if errors.Is(err, session.ErrNotConfigured) {
		out.Fail("No catalog configured or available")
		out.Println(session.NotConfiguredHint)
		return
	}
	if errors.Is(err, catalog.ErrNotInitialized) {
		out.Fail("Error: %s", err)
		out.Println(notInitializedHint)
		return
	}
	if errors.Is(err, errAborted) {
		out.Fail("Aborted")
		return
	}
	var commandErr *CommandError
	if errors.As(err, &commandErr) {
		out.Error(commandErr.Operation, commandErr.Err)
		return
	}
	out.Fail("Error: %s", err)
}

// missingFlags is used where kong cannot require a flag because an
// informational flag may be given alone.
func missingFlags(flags map[string]string) error {
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)

	missing := []string{}
	for _, name := range names {
		if strings.TrimSpace(flags[name]) == "" {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing flags: %s", strings.Join(missing, ", "))
}

func confirm(rt *Runtime, yes bool, question string) error {
	if yes {
		return nil
	}
	confirmed, err := rt.Console.Confirm(question)
	if err != nil {
		return err
	}
	if !confirmed {
		return errAborted
	}
	return nil
}
