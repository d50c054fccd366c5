package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hwaldner/pinout/pkg/command"
	"github.com/hwaldner/pinout/pkg/document"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	output string // output file path (stdout if empty)
	check  bool   // interpret the document instead of just parsing rows
}

// parseCommand creates the parse command, a debugging aid that dumps the
// parsed command list as JSON.
func (c *CLI) parseCommand() *cobra.Command {
	var opts parseOpts

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a command document and print the commands as JSON",
		Long: `Parse a command document and print the commands as JSON.

With --check the document is also interpreted: phases are gated, style rows
are folded into the theme store and references are resolved, so errors are
reported exactly as the render command would report them.

Examples:
  pinout parse board.csv
  pinout parse board.csv --check
  pinout parse board.csv -o commands.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.check, "check", false, "interpret the document and report validation errors")

	return cmd
}

// parsedCommand is the JSON shape of one parsed command.
type parsedCommand struct {
	Index int             `json:"index"`
	Word  string          `json:"word"`
	Cmd   command.Command `json:"cmd"`
}

// runParse parses the document and writes the command list as JSON.
func (c *CLI) runParse(cmd *cobra.Command, input string, opts *parseOpts) error {
	prog := newProgress(loggerFromContext(cmd.Context()))

	cmds, err := command.ParseFile(input)
	if err != nil {
		return err
	}

	if opts.check {
		doc, err := document.Interpret(cmds)
		if err != nil {
			return err
		}
		if len(doc.Steps) == 0 {
			printWarning("document has no draw steps")
		}
	}

	out := make([]parsedCommand, len(cmds))
	for i, cmd := range cmds {
		out[i] = parsedCommand{Index: i, Word: cmd.Word(), Cmd: cmd}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Parsed %d commands", len(cmds)))

	w, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer w.Close()

	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	if opts.output != "" {
		printFile(opts.output)
	}
	printNextStep("Render it", fmt.Sprintf("pinout render %s", input))
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method, making os.Stdout
// compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path, or stdout when the
// path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
