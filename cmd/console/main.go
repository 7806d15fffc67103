package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kettari/games-bot/internal/console"
)

type Commands []console.Command

func main() {
	slog.Info("starting console command")

	commands := initCommands()
	if len(os.Args) > 1 {
		runCommand(commands, os.Args[1], os.Args[2:])
	} else {
		printHelp(commands)
	}

	slog.Info("command finished")
}

func initCommands() *Commands {
	commands := &Commands{}
	*commands = Commands{
		console.NewHelpCommand(func() []console.Command { return *commands }),
		console.NewScheduleFetchCommand(),
		console.NewScheduleShowCommand(),
		console.NewScheduleReportCommand(),
		console.NewBotPollCommand(),
		console.NewMigrateCommand(),
	}
	return commands
}

func runCommand(commands *Commands, name string, args []string) {
	for _, cmd := range *commands {
		if name == cmd.Name() {
			slog.Info("command found", "command", cmd.Name())
			if err := cmd.Run(args); err != nil {
				slog.Error(err.Error())
				os.Exit(1)
			}
			return
		}
	}
	fmt.Printf("command '%s' not found\n", name)
	printHelp(commands)
	os.Exit(2)
}

func printHelp(commands *Commands) {
	for _, cmd := range *commands {
		if cmd.Name() == "help" {
			_ = cmd.Run(nil)
			return
		}
	}
}
