// ABOUTME: Entry point for the SMS campaign leads CRM
// ABOUTME: Routes to the terminal UI, web frontend, MCP server or CLI commands
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/harperreed/smscrm/api"
	"github.com/harperreed/smscrm/cli"
	"github.com/harperreed/smscrm/config"
	"github.com/harperreed/smscrm/logging"
)

const version = "0.2.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file (default: ~/.config/smscrm/config.yaml)")
	apiURL := flag.String("api-url", "", "Leads API base URL (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("smscrm version %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *apiURL != "" {
		cfg.APIURL = *apiURL
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	args := flag.Args()
	if len(args) == 0 {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			printUsage()
			os.Exit(0)
		}
		args = []string{"tui"}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := args[0]
	commandArgs := args[1:]

	// The TUI owns the terminal, so it logs to a file; everything else logs
	// to stderr, which keeps stdout clean for tables and the MCP protocol.
	logger := logging.New(os.Stderr, cfg.LogLevel)
	if command == "tui" {
		fileLogger, f, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer func() { _ = f.Close() }()
		logger = fileLogger
	}

	client := api.New(cfg.APIURL, api.WithLogger(logger), api.WithTimeout(cfg.Timeout))

	if err := run(ctx, command, commandArgs, cfg, client, logger); err != nil {
		stop()
		log.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, command string, args []string, cfg *config.Config, client *api.Client, logger *charmlog.Logger) error {
	switch command {
	case "tui":
		return cli.TUICommand(ctx, client, logger)

	case "web":
		return cli.WebCommand(ctx, client, logger, args)

	case "mcp":
		return cli.MCPCommand(ctx, client, logger, version)

	case "devserver":
		return cli.DevServerCommand(ctx, logger, args)

	case "health":
		return cli.HealthCommand(ctx, client)

	case "config":
		if len(args) == 0 || args[0] == "show" {
			return cli.ConfigShowCommand(cfg)
		}
		if args[0] == "set" {
			return cli.ConfigSetCommand(cfg.Path(), args[1:])
		}
		printUsage()
		return fmt.Errorf("unknown config command: %s", args[0])

	case "leads":
		if len(args) == 0 {
			printUsage()
			return fmt.Errorf("leads requires a subcommand")
		}
		sub, subArgs := args[0], args[1:]
		switch sub {
		case "list":
			return cli.ListLeadsCommand(ctx, client, subArgs)
		case "add":
			return cli.AddLeadCommand(ctx, client, subArgs)
		case "update":
			return cli.UpdateLeadCommand(ctx, client, subArgs)
		case "note":
			return cli.NoteCommand(ctx, client, subArgs)
		default:
			printUsage()
			return fmt.Errorf("unknown leads command: %s", sub)
		}

	case "viz":
		if len(args) == 0 {
			printUsage()
			return fmt.Errorf("viz requires a subcommand")
		}
		sub, subArgs := args[0], args[1:]
		switch sub {
		case "funnel":
			return cli.VizFunnelCommand(ctx, client, subArgs)
		case "dashboard":
			return cli.VizDashboardCommand(ctx, client, subArgs)
		default:
			printUsage()
			return fmt.Errorf("unknown viz command: %s", sub)
		}

	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage() {
	fmt.Printf(`smscrm v%s - SMS campaign leads CRM

USAGE:
  smscrm [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ~/.config/smscrm/config.yaml)
  --api-url <url>        Leads API base URL (default: %s)
  --log-level <level>    debug, info, warn or error

COMMANDS:
  tui                    Interactive terminal UI (default on a terminal)
  web                    HTML frontend
    --port <n>              Port to listen on (default: 8080)
  mcp                    MCP tool server on stdio
  health                 Check that the leads API answers
  config [show]          Print the effective settings
  config set <key> <v>   Save api-url, timeout, log-level or log-file to the config file
  devserver              Local reference backend on SQLite
    --port <n>              Port to listen on (default: 5000)
    --db <path>             Database path (default: ~/.local/share/smscrm/devserver.db)
    --seed                  Insert sample leads first

LEADS COMMANDS:
  smscrm leads list         List leads
    --status <status>         NEW, SENT, REPLIED or BOOKED
    --sort <key>              name, status or created
    --desc                    Sort descending

  smscrm leads add          Add a lead
    --first-name <name>       First name (required)
    --last-name <name>        Last name (required)
    --phone <phone>           Primary phone (one phone is required)
    --phone2..--phone4        Additional phones
    --email, --address, --zip, --resort, --mortgaged, --status

  smscrm leads update [flags] <id>  Update a lead; only given flags change
    Note: flags must come before the lead ID

  smscrm leads note <id> <content...>  Add a note to a lead

VIZ COMMANDS:
  smscrm viz funnel         Status funnel as GraphViz DOT
    --output <file>           Output file (default: stdout)
  smscrm viz dashboard      Status funnel as a terminal dashboard

EXAMPLES:
  # Run the reference backend with sample data, then open the TUI
  smscrm devserver --seed &
  smscrm

  # Move a lead to REPLIED
  smscrm leads update --status REPLIED 12

`, version, config.DefaultAPIURL)
}
