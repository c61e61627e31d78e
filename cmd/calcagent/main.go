// Command calcagent is a Spanish-speaking assistant that answers questions
// with a calculator, web search and Wikipedia, using a DeepSeek model to
// decide which one to call.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/leofalp/calcagent/internal/config"
	"github.com/leofalp/calcagent/internal/utils"
)

var (
	version = "dev"
	commit  = "none"
)

// errReported is returned once the error has already been shown to the user.
var errReported = errors.New("reported")

type rootOptions struct {
	configPath string
	demo       bool
	question   string
	quiet      bool
}

// traceWriter is where tool steps stream as they happen. The REPL owns the
// terminal and shows steps in its history instead, so it gets none.
func (o *rootOptions) traceWriter(w io.Writer) io.Writer {
	if o.demo || o.question != "" {
		return w
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "\n❌ Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "calcagent",
		Short: "Agente calculadora + búsqueda con DeepSeek",
		Long: `Agente conversacional que combina un modelo de DeepSeek con tres herramientas:
una calculadora, búsqueda web (SerpAPI) y Wikipedia.`,
		Example: `  calcagent                              # modo interactivo
  calcagent --demo                       # demostración con preguntas de ejemplo
  calcagent --question "¿Cuánto es 2^10?" # una sola pregunta
  calcagent --quiet                      # sin mensajes de razonamiento`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoot(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "archivo de configuración TOML (por defecto "+config.DefaultPath()+")")
	root.Flags().BoolVar(&opts.demo, "demo", false, "ejecutar demostración con preguntas de ejemplo")
	root.Flags().StringVar(&opts.question, "question", "", "hacer una sola pregunta y salir")
	root.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "modo silencioso (sin mensajes de razonamiento)")
	root.MarkFlagsMutuallyExclusive("demo", "question")

	root.AddCommand(toolsCmd(opts), configCmd(opts), versionCmd())
	return root
}

func runRoot(cmd *cobra.Command, opts *rootOptions) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(errOut, "\n❌ Error de configuración: %v\n\n%s\n", err, configTip)
		return errReported
	}

	verbose := cfg.Agent.Verbose && !opts.quiet
	if verbose {
		fmt.Fprintln(out, "\n⚙️  Inicializando agente...")
	}

	a, err := newApp(cfg, nil, newLogger(cfg, opts.quiet, errOut), verbose, opts.traceWriter(errOut))
	if err != nil {
		return fmt.Errorf("al crear el agente: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	switch {
	case opts.demo:
		return runDemo(ctx, a, out)
	case opts.question != "":
		return runQuestion(ctx, a, opts.question, out)
	default:
		return runREPL(ctx, a)
	}
}

func runDemo(ctx context.Context, a *app, w io.Writer) error {
	separator := "============================================================"
	fmt.Fprintf(w, "\n%s\n🎮 MODO DEMOSTRACIÓN\n%s\n", separator, separator)

	for i, question := range demoQuestions {
		fmt.Fprintf(w, "\n📝 Pregunta %d: %s\n%s\n", i+1, question, "--------------------------------------------------")
		result, err := a.ask(ctx, question)
		if err != nil {
			fmt.Fprintf(w, "\n❌ Error: %v\n", err)
		} else {
			fmt.Fprintf(w, "\n✅ Respuesta: %s\n", result.Answer)
			if a.verbose {
				fmt.Fprintln(w, mutedStyle.Render("   "+result.Summary.String()))
			}
		}
		fmt.Fprintln(w, separator)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

func runQuestion(ctx context.Context, a *app, question string, w io.Writer) error {
	result, err := a.ask(ctx, question)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n🤖 Respuesta: %s\n", result.Answer)
	if a.verbose {
		fmt.Fprintln(w, mutedStyle.Render("   "+result.Summary.String()))
	}
	return nil
}

func toolsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Listar las herramientas y su configuración",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			entries := toolkitStatus(cfg)
			if asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), utils.JSONToString(entries, true))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), toolsText(entries))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "salida en JSON")
	return cmd
}

func configCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Gestionar la configuración",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Mostrar la configuración efectiva (claves ocultas)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.Load(opts.configPath)
				if err != nil {
					return err
				}
				return cfg.Redact().Encode(cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Mostrar la ruta del archivo de configuración",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				path := opts.configPath
				if path == "" {
					path = config.DefaultPath()
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			},
		},
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Mostrar la versión",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "calcagent %s (commit: %s)\n", version, commit)
		},
	}
}
