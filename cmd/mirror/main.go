package main

import (
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/unbound-force/mirror/internal/config"
	"github.com/unbound-force/mirror/internal/loader"
	"github.com/unbound-force/mirror/internal/report"
	"github.com/unbound-force/mirror/internal/resolve"
	"github.com/unbound-force/mirror/internal/static"
	"github.com/unbound-force/mirror/internal/taxonomy"
)

// logger is the application-wide structured logger (writes to stderr).
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
})

// Set by build flags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "mirror",
		Short: "Mirror: list and resolve the members of Go types",
		Long: `Mirror lists the members of a Go type (or package) and dry-runs
member resolution against them: the same name, signature, generic
argument and binding rules the mirror library applies at run time.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(charmlog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
	root.PersistentFlags().String("config", "",
		"path to the config file (default: "+config.FileName+")")

	root.AddCommand(newMembersCmd())
	root.AddCommand(newResolveCmd())
	root.AddCommand(newSchemaCmd())
	return root
}

// loadConfig reads the config file and applies non-empty flag values
// over it. An empty path reads the default file when it exists.
func loadConfig(path, binding, format string) (*config.Config, error) {
	if path == "" {
		path = config.FileName
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if binding != "" {
		cfg.Binding = binding
	}
	if format != "" {
		cfg.Format = format
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func describe(pkgPath, typeExpr string) (*static.Descriptor, error) {
	logger.Info("loading package", "pkg", pkgPath)
	res, err := loader.Load(pkgPath)
	if err != nil {
		return nil, err
	}
	return static.New(res, typeExpr)
}

// membersParams holds the parsed flags for the members command.
type membersParams struct {
	pkgPath     string
	typeExpr    string
	member      string
	binding     string
	format      string
	configPath  string
	interactive bool
	stdout      io.Writer
	stderr      io.Writer
}

// runMembers is the extracted, testable body of the members command.
func runMembers(p membersParams) error {
	cfg, err := loadConfig(p.configPath, p.binding, p.format)
	if err != nil {
		return err
	}
	if p.interactive && !isatty.IsTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("interactive mode requires a terminal")
	}

	desc, err := describe(p.pkgPath, p.typeExpr)
	if err != nil {
		return err
	}

	mask := cfg.BindingMask()
	var cands []*resolve.Candidate
	for _, c := range desc.Members() {
		if p.member != "" && c.Name != p.member {
			continue
		}
		if mask.Admits(c.Public, c.Static) {
			cands = append(cands, c)
		}
	}
	if len(cands) == 0 && p.member != "" {
		return fmt.Errorf("member %q not found in %s", p.member, desc.TypeName())
	}
	logger.Info("listing members", "type", desc.TypeName(), "members", len(cands))

	listing := report.NewListing(desc.TypeName(), cands)
	if p.interactive {
		return runInteractiveMembers(listing, cfg.Complexity.Threshold)
	}
	switch cfg.Format {
	case "json":
		return report.WriteListingJSON(p.stdout, listing)
	default:
		return report.WriteListingText(p.stdout, listing, report.TextOptions{
			ComplexityThreshold: cfg.Complexity.Threshold,
		})
	}
}

func newMembersCmd() *cobra.Command {
	var (
		member      string
		binding     string
		format      string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "members [package] [type]",
		Short: "List the members of a type or package",
		Long: `List the fields, methods, constructors and indexer of a type
declared in a Go package. Without a type, list the package scope:
functions, variables, constants and type names.

The type may be any type expression valid in the package, such as
Box[int] or *Shape.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typeExpr := ""
			if len(args) > 1 {
				typeExpr = args[1]
			}
			cfgPath, _ := cmd.Flags().GetString("config")
			return runMembers(membersParams{
				pkgPath:     args[0],
				typeExpr:    typeExpr,
				member:      member,
				binding:     binding,
				format:      format,
				configPath:  cfgPath,
				interactive: interactive,
				stdout:      cmd.OutOrStdout(),
				stderr:      cmd.ErrOrStderr(),
			})
		},
	}

	cmd.Flags().StringVarP(&member, "member", "m", "",
		"list only members with this name")
	cmd.Flags().StringVar(&binding, "binding", "",
		"binding flags: any, or a list of public, nonpublic, instance, static")
	cmd.Flags().StringVar(&format, "format", "",
		"output format: text or json")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"launch interactive TUI for browsing members")

	return cmd
}

// resolveParams holds the parsed flags for the resolve command.
type resolveParams struct {
	pkgPath      string
	typeExpr     string
	member       string
	op           string
	signature    string
	hasSignature bool
	generic      string
	hasGeneric   bool
	args         string
	binding      string
	format       string
	configPath   string
	stdout       io.Writer
	stderr       io.Writer
}

// runResolve is the extracted, testable body of the resolve command.
// It fails when the member does not resolve, after writing the report.
func runResolve(p resolveParams) error {
	cfg, err := loadConfig(p.configPath, p.binding, p.format)
	if err != nil {
		return err
	}
	op, err := taxonomy.ParseOperation(p.op)
	if err != nil {
		return err
	}

	desc, err := describe(p.pkgPath, p.typeExpr)
	if err != nil {
		return err
	}

	q := resolve.Query{
		Name:         p.member,
		HasSignature: p.hasSignature,
		HasGeneric:   p.hasGeneric,
		Binding:      cfg.BindingMask(),
	}
	if q.Signature, err = desc.ParseTypes(p.signature, false); err != nil {
		return fmt.Errorf("--signature: %w", err)
	}
	if q.Generic, err = desc.ParseTypes(p.generic, false); err != nil {
		return fmt.Errorf("--generic: %w", err)
	}
	args, err := desc.ParseTypes(p.args, true)
	if err != nil {
		return fmt.Errorf("--args: %w", err)
	}
	if len(args) > 0 && !taxonomy.TakesArgs(op) {
		return fmt.Errorf("--args: operation %q takes no arguments", op)
	}

	r, resErr := resolve.Resolve(desc, q, op, args...)
	rpt := report.NewResolution(desc.TypeName(), p.member, op, r, resErr)
	if rpt == nil {
		return resErr
	}
	logger.Debug("resolution finished", "member", p.member, "op", op, "ok", resErr == nil)

	switch cfg.Format {
	case "json":
		err = report.WriteResolutionJSON(p.stdout, rpt)
	default:
		err = report.WriteResolutionText(p.stdout, rpt)
	}
	if err != nil {
		return err
	}
	if rpt.Error != nil {
		return fmt.Errorf("%s: %s", rpt.Error.Kind, resErr)
	}
	return nil
}

func newResolveCmd() *cobra.Command {
	var (
		op        string
		signature string
		generic   string
		args      string
		binding   string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "resolve [package] [type|.] [member]",
		Short: "Dry-run member resolution",
		Long: `Resolve a member of a type (or of the package scope, given ".")
the way the mirror library would, and report the member it picks.
Type lists are comma-separated type expressions; "_" matches any type
and, in --args, "nil" stands for an untyped nil argument.

Exits non-zero when no member or more than one member matches.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, pos []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			return runResolve(resolveParams{
				pkgPath:      pos[0],
				typeExpr:     pos[1],
				member:       pos[2],
				op:           op,
				signature:    signature,
				hasSignature: cmd.Flags().Changed("signature"),
				generic:      generic,
				hasGeneric:   cmd.Flags().Changed("generic"),
				args:         args,
				binding:      binding,
				format:       format,
				configPath:   cfgPath,
				stdout:       cmd.OutOrStdout(),
				stderr:       cmd.ErrOrStderr(),
			})
		},
	}

	cmd.Flags().StringVar(&op, "op", "any",
		"operation: any, value, index, invoke, event, or nested")
	cmd.Flags().StringVar(&signature, "signature", "",
		"parameter types the member must declare")
	cmd.Flags().StringVar(&generic, "generic", "",
		"generic arguments, \"_\" to infer one")
	cmd.Flags().StringVar(&args, "args", "",
		"argument types for index and invoke")
	cmd.Flags().StringVar(&binding, "binding", "",
		"binding flags: any, or a list of public, nonpublic, instance, static")
	cmd.Flags().StringVar(&format, "format", "",
		"output format: text or json")

	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for mirror output",
		Long: `Print the JSON Schema (Draft 2020-12) that documents the
structure of mirror members and mirror resolve --format=json output.
Useful for validating output or generating client types.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), report.Schema)
			return err
		},
	}
}
