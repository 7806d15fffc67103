package console

import (
	"fmt"
	"io"
	"os"
)

type HelpCommand struct {
	commands func() []Command
	out      io.Writer
}

// NewHelpCommand lists the commands returned by commands; the callback lets
// help describe a list that contains help itself.
func NewHelpCommand(commands func() []Command) *HelpCommand {
	return &HelpCommand{commands: commands, out: os.Stdout}
}

func (cmd *HelpCommand) Name() string {
	return "help"
}

func (cmd *HelpCommand) Description() string {
	return "lists available commands"
}

func (cmd *HelpCommand) Run([]string) error {
	fmt.Fprintln(cmd.out, "Usage: games_console <command> [args]")
	for _, c := range cmd.commands() {
		fmt.Fprintf(cmd.out, "\t%s - %s\n", c.Name(), c.Description())
	}
	return nil
}
