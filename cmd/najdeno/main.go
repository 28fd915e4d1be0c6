package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/model"
)

type options struct {
	configPath string
	dbPath     string
	addr       string
	adminUser  string
	logPath    string
	role       string
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newFlagSet(opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("najdeno", pflag.ContinueOnError)
	fs.StringVarP(&opts.configPath, "config", "c", "", "")
	fs.StringVarP(&opts.dbPath, "db", "d", "najdeno.sqlite3", "")
	fs.StringVarP(&opts.addr, "addr", "a", ":8080", "")
	fs.StringVarP(&opts.adminUser, "user", "u", "Admin", "")
	fs.StringVarP(&opts.logPath, "log", "l", "", "")
	fs.StringVarP(&opts.role, "role", "r", model.RoleUser, "")
	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: najdeno [flags] [command]

Commands:
  serve                   run the web board and API (default)
  adduser <name>          create an account and print its password
  export [file]           write the board as JSON (default: stdout)
  import <file>           merge a board JSON export, keeping existing ids
  match                   print ranked potential matches

Flags:
  -c, --config <path>     YAML or JSONC config file
  -d, --db <path>         SQLite database path (default: najdeno.sqlite3)
  -a, --addr <host:port>  listen address (default: :8080)
  -u, --user <name>       admin username on first run (default: Admin)
  -r, --role <role>       role for adduser: admin or user (default: user)
  -l, --log <path>        log file path (default: no file, stdout/stderr only)
  -h, --help              show this help and exit
`)
	}
	return fs
}

// loadConfig reads the config file, if any, then applies flags the user
// set explicitly on top of it.
func loadConfig(fs *pflag.FlagSet, opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if fs.Changed("db") {
		cfg.Server.DB = opts.dbPath
	}
	if fs.Changed("addr") {
		cfg.Server.Addr = opts.addr
	}
	if fs.Changed("log") {
		cfg.Server.Log = opts.logPath
	}
	return cfg, cfg.Validate()
}

// run executes one command. Command output goes to stdout; for every
// command except serve, logs and the first-run banner go to stderr.
func run(args []string, stdout, stderr io.Writer) error {
	var opts options
	fs := newFlagSet(&opts)
	if err := fs.Parse(args); err != nil {
		return err
	}

	command := "serve"
	rest := fs.Args()
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}

	cfg, err := loadConfig(fs, &opts)
	if err != nil {
		return err
	}

	notices := stdout
	if command != "serve" {
		notices = stderr
	}

	closeLog, err := setupLogger(cfg.Server.Log, notices, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	database, err := openDatabase(cfg.Server.DB, opts.adminUser, notices)
	if err != nil {
		return err
	}
	defer database.Close()

	switch command {
	case "serve":
		if len(rest) > 0 {
			return fmt.Errorf("unexpected argument: %s", rest[0])
		}
		return serve(database, cfg)
	case "adduser":
		if len(rest) != 1 {
			return fmt.Errorf("usage: najdeno adduser <name> [--role admin|user]")
		}
		return addUser(database, stdout, rest[0], opts.role)
	case "export":
		if len(rest) > 1 {
			return fmt.Errorf("usage: najdeno export [file]")
		}
		path := ""
		if len(rest) == 1 {
			path = rest[0]
		}
		return exportBoard(database, stdout, path)
	case "import":
		if len(rest) != 1 {
			return fmt.Errorf("usage: najdeno import <file>")
		}
		return importBoard(database, stdout, rest[0])
	case "match":
		if len(rest) > 0 {
			return fmt.Errorf("unexpected argument: %s", rest[0])
		}
		return printMatches(database, stdout, cfg.Match)
	default:
		fs.Usage()
		slog.Error("unknown command", "command", command)
		return fmt.Errorf("unknown command: %s", command)
	}
}
