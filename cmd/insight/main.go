package main

import (
	"os"

	"github.com/fatih/color"
)

const version = "0.1.0"

// insight runs an arbitrary command under a root trace span named
// manage/<command>, so management tasks show up in the same trace backend
// as the application serving them. The wrapped command's stdio and exit
// code pass through unchanged.
func main() {
	command, args, err := validateInput()
	if err != nil {
		exitGracefully(err)
		os.Exit(2)
	}

	switch command {
	case "help":
		showHelp()
		return
	case "version":
		color.Yellow("insight v" + version)
		return
	}

	os.Exit(run(command, args))
}

func validateInput() (string, []string, error) {
	if len(os.Args) < 2 {
		color.Red("Please provide a command to trace")
		showHelp()
		return "", nil, errMissingCommand
	}
	return os.Args[1], os.Args[2:], nil
}

func exitGracefully(err error, msg ...string) {
	message := ""
	if len(msg) > 0 {
		message = msg[0]
	}

	if err != nil && err != errMissingCommand {
		color.Red("Error: %v\n", err)
	}

	if message != "" {
		color.Yellow(message)
	}
}

func showHelp() {
	color.Yellow(`Usage: insight <command> [args...]

	Runs <command> under a root trace span named manage/<command>.

	help      - show this help
	version   - show insight version

	Configuration comes from the environment (or a .env file):
	  APPLICATIONINSIGHTS_CONNECTION_STRING  - connection string
	  APPINSIGHTS_INSTRUMENTATIONKEY         - bare instrumentation key
	  INSIGHT_COLLECTOR_ENDPOINT             - OTLP collector (host:port)

	Without a collector endpoint the command still runs, untraced.
	`)
}
