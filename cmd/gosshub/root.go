package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gosshub/client/internal/app"
	"gosshub/client/internal/config"
	"gosshub/client/internal/guard"
	"gosshub/client/internal/tags"
)

const accessAnnotation = "gosshub/access"

var accessNames = map[string]guard.Access{
	"public":    guard.Public,
	"protected": guard.Protected,
	"unauthed":  guard.Unauthed,
	"admin":     guard.Admin,
}

// cli carries what every command needs once the root has set up the app.
type cli struct {
	cfgFile string
	app     *app.App
	in      *bufio.Reader
	stdin   io.Reader
	out     io.Writer
}

func newCLI(in io.Reader, out io.Writer) *cli {
	return &cli{in: bufio.NewReader(in), stdin: in, out: out}
}

func newRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	return newCLI(in, out).rootCommand()
}

// execute runs the command line and always releases the app, including
// when a command fails and cobra skips the post-run hooks.
func (c *cli) execute(ctx context.Context, args []string) error {
	root := c.rootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, c.teardown())
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "gosshub",
		Short:             "Read, write and discuss GossHub documents from the terminal",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown()
		},
	}
	root.SetOut(c.out)

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/gosshub/config.yaml)")
	flags.String("api-url", "", "GossHub API base URL")
	flags.String("profile", "", "token profile")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		c.loginCommand(),
		c.logoutCommand(),
		c.registerCommand(),
		c.verifyEmailCommand(),
		c.resetTokenCommand(),
		c.resetPasswordCommand(),
		c.newPasswordCommand(),
		c.whoamiCommand(),
		c.statusCommand(),
		c.docsCommand(),
		c.commentCommand(),
		c.watchCommand(true),
		c.watchCommand(false),
		c.tagsCommand(),
		c.tagCommand(),
		c.logCommand(),
		c.userCommand(),
		c.accountCommand(),
		c.adminCommand(),
		c.pageCommand(),
		c.exportCommand(),
		c.mirrorCommand(),
		c.searchCommand(),
		c.indexCommand(),
		c.archiveCommand(),
	)
	return root
}

// access marks cmd with the guard it runs behind. Commands without a mark
// are public.
func access(cmd *cobra.Command, name string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[accessAnnotation] = name
	return cmd
}

func accessOf(cmd *cobra.Command) guard.Access {
	if a, ok := accessNames[cmd.Annotations[accessAnnotation]]; ok {
		return a
	}
	return guard.Public
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.cfgFile, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	c.app = a
	cmd.SetContext(a.WithLogger(cmd.Context(), cmd.CommandPath()))
	if err := a.Start(cmd.Context()); err != nil {
		return err
	}
	return a.Require(accessOf(cmd))
}

func (c *cli) teardown() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *cli) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword does not echo when stdin is a terminal.
func (c *cli) readPassword(prompt string) (string, error) {
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.out, prompt)
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(secret), nil
	}
	return c.readLine(prompt)
}

// readBody takes --body, or the file named by --file ("-" is stdin).
func (c *cli) readBody(body, file string) (string, error) {
	switch {
	case body != "" && file != "":
		return "", fmt.Errorf("use either --body or --file")
	case file == "-":
		data, err := io.ReadAll(c.in)
		return string(data), err
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(data), nil
	default:
		return body, nil
	}
}

func parseTags(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	return tags.Parse(raw)
}
