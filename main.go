// ABOUTME: Entry point for the immo real-estate CRM
// ABOUTME: Routes to the MCP server, the kanban TUI or CLI commands based on arguments
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/harperreed/immo/charm"
	"github.com/harperreed/immo/cli"
	"github.com/harperreed/immo/config"
	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/tui"
)

const version = "0.2.0"

type workspaceCommand func(ws *crm.Workspace, args []string) error

// Subcommands that only need the workspace, grouped by noun.
var workspaceCommands = map[string]map[string]workspaceCommand{
	"contact": {
		"add":    cli.AddContactCommand,
		"list":   cli.ListContactsCommand,
		"update": cli.UpdateContactCommand,
		"delete": cli.DeleteContactCommand,
	},
	"lead": {
		"add":       cli.AddLeadCommand,
		"list":      cli.ListLeadsCommand,
		"move":      cli.MoveLeadCommand,
		"contacted": cli.ContactedCommand,
		"convert":   cli.ConvertLeadCommand,
		"delete":    cli.DeleteLeadCommand,
	},
	"mandat": {
		"add":    cli.AddMandatCommand,
		"list":   cli.ListMandatsCommand,
		"move":   cli.MoveMandatCommand,
		"score":  cli.ScoreMandatCommand,
		"delete": cli.DeleteMandatCommand,
	},
	"buyer": {
		"add":  cli.AddBuyerCommand,
		"list": cli.ListBuyersCommand,
		"move": cli.MoveBuyerCommand,
	},
	"deal": {
		"add":    cli.AddDealCommand,
		"list":   cli.ListDealsCommand,
		"move":   cli.MoveDealCommand,
		"score":  cli.ScoreDealCommand,
		"delete": cli.DeleteDealCommand,
		"stages": cli.ListStagesCommand,
	},
	"task": {
		"add":    cli.AddTaskCommand,
		"list":   cli.ListTasksCommand,
		"delete": cli.DeleteTaskCommand,
	},
	"annonce": {
		"add":  cli.AddAnnonceCommand,
		"list": cli.ListAnnoncesCommand,
	},
	"goal": {
		"plan":     cli.GoalPlanCommand,
		"show":     cli.GoalShowCommand,
		"progress": cli.GoalProgressCommand,
	},
	"viz": {
		"funnel":    cli.VizFunnelCommand,
		"pipeline":  cli.VizPipelineCommand,
		"dashboard": cli.VizDashboardCommand,
	},
}

var syncCommands = map[string]func([]string) error{
	"link":   charm.SyncLinkCommand,
	"unlink": charm.SyncUnlinkCommand,
	"status": charm.SyncStatusCommand,
	"now":    charm.SyncNowCommand,
	"wipe":   charm.SyncWipeCommand,
	"auto":   charm.SetAutoSyncCommand,
}

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	backend := flag.String("backend", "", "Storage backend: charm, local, sqlite or memory (default: $IMMO_BACKEND or charm)")
	dbPath := flag.String("db-path", "", "SQLite path (default: ~/.local/share/immo/immo.db)")
	envFile := flag.String("env", "", "Read configuration from this .env file")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("immo version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 || args[0] == "help" {
		printUsage()
		os.Exit(0)
	}

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "err", err)
	}
	cfg.ApplyLogging()

	command, commandArgs := args[0], args[1:]
	if err := run(cfg, command, commandArgs); err != nil {
		log.Fatal("command failed", "command", command, "err", err)
	}
}

func run(cfg *config.Config, command string, args []string) error {
	// Commands that never touch stored data
	switch command {
	case "score":
		return cli.ScoreCommand(args)
	case "seniority":
		return cli.SuggestSeniorityCommand(args)
	case "sync":
		if len(args) == 0 {
			return usageError("sync requires a subcommand")
		}
		fn, ok := syncCommands[args[0]]
		if !ok {
			return usageError("unknown sync command: " + args[0])
		}
		return fn(args[1:])
	case "import":
		if len(args) > 0 && args[0] == "init" {
			return cli.ImportInitCommand(cfg, args[1:])
		}
	}

	b, err := cli.OpenBackend(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Error("failed to close backend", "err", err)
		}
	}()
	ws := b.Workspace

	switch command {
	case "mcp":
		return cli.MCPCommand(ws, version)
	case "tui", "board":
		return tui.Run(ws)
	case "export":
		return cli.ExportCommand(ws, args)
	case "orphans":
		return cli.OrphansCommand(ws, args)
	case "import":
		if len(args) == 0 {
			return usageError("import requires a subcommand")
		}
		switch args[0] {
		case "contacts":
			return cli.ImportContactsCommand(b, args[1:])
		case "calendar":
			return cli.ImportCalendarCommand(b, args[1:])
		case "status":
			return cli.ImportStatusCommand(b, args[1:])
		}
		return usageError("unknown import command: " + args[0])
	}

	group, ok := workspaceCommands[command]
	if !ok {
		return usageError("unknown command: " + command)
	}
	if len(args) == 0 {
		return usageError(command + " requires a subcommand")
	}
	fn, ok := group[args[0]]
	if !ok {
		return usageError(fmt.Sprintf("unknown %s command: %s", command, args[0]))
	}
	return fn(ws, args[1:])
}

func usageError(msg string) error {
	printUsage()
	return fmt.Errorf("%s", msg)
}

func printUsage() {
	fmt.Printf(`immo v%s - Real-estate CRM for agents

USAGE:
  immo [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --backend <name>       charm, local, sqlite or memory (env IMMO_BACKEND)
  --db-path <path>       SQLite path for the sqlite backend and the import log (env IMMO_DB_PATH)
  --env <file>           Read configuration from a .env file (default: ./.env)

COMMANDS:
  mcp                    Start MCP server for Claude Desktop
  tui                    Kanban boards for leads, mandats and buyers
  contact                add | list | update | delete
  lead                   add | list | move | contacted | convert | delete
  mandat                 add | list | move | score | delete
  buyer                  add | list | move
  deal                   add | list | move | score | delete | stages
  task                   add | list | delete
  annonce                add | list
  goal                   plan | show | progress
  viz                    funnel | pipeline | dashboard
  score                  Score a seller questionnaire without storing it
  seniority              Suggest a seniority level for a revenue target
  export                 Export every collection as JSON or YAML
  orphans                List records pointing at missing contacts or mandats
  sync                   link | unlink | status | now | wipe | auto (Charm Cloud)
  import                 init | contacts | calendar | status (Google)

LEAD PHASES:
  PROSPECT → PROSPECT_QUALIFIE → CLIENT → APRES_VENTE
  Moving a lead to CLIENT creates a mandat after confirmation.
  CLIENT and APRES_VENTE leads never move back to a prospect phase.

MANDAT AND BUYER STAGES:
  LEAD, PROSPECT, VISITES, OFFRE, NEGOCIATION, PURCHASED, APRES_VENTE

EXAMPLES:
  # Start MCP server for Claude Desktop
  immo mcp

  # Add a seller lead and qualify it
  immo lead add --seller "Karim Alaoui" --title "Villa Californie" --region Casablanca
  immo lead move <lead-id> PROSPECT_QUALIFIE

  # Promote to client, creating an exclusive mandat
  immo lead move --mandat-type EXCLUSIF --mandat-value 3500000 <lead-id> CLIENT

  # Score a seller
  immo score --timeframe IMMEDIATE --motivation MUST_SELL --price MARKET --exclusivity YES

  # Plan the year and render this month's funnel
  immo goal plan --revenue 250000
  immo viz funnel --output funnel.dot

`, version)
}
