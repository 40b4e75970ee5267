package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mickamy/apiwire/client"
	"github.com/mickamy/apiwire/config"
	"github.com/mickamy/apiwire/envelope"
)

var version = "dev"

func main() {
	fs := flag.NewFlagSet("apiwire", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "apiwire — send one query to an apiwire server and print the reply\n\nUsage:\n  apiwire [flags] <addr>\n\nFlags:\n")
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "YAML config file (optional)")
	authToken := fs.String("auth", "", "auth token")
	sql := fs.String("sql", "", "run a SQL query: \"database:statement\"")
	database := fs.String("database", "", "database name for -sql (alternative to \"database:\" prefix)")
	python := fs.String("python", "", "run a Python script")
	executable := fs.String("executable", "", "run a named executable")
	params := fs.String("params", "", "JSON object of params for -python/-executable")
	keepAlive := fs.Bool("keep-alive", false, "set keepAlive in the request (advisory to the server; the CLI closes its connection on exit)")
	debug := fs.Bool("debug", false, "request debug error details from the server")
	timeout := fs.Duration("timeout", 0, "override the configured request timeout (0 = use config)")
	showVersion := fs.Bool("version", false, "show version and exit")

	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("apiwire %s\n", version)
		return
	}

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	query, err := buildQuery(*sql, *database, *python, *executable, *params)
	if err != nil {
		fmt.Fprintln(os.Stderr, "apiwire:", err)
		os.Exit(1)
	}

	if err := run(fs.Arg(0), *configPath, *authToken, *timeout, *debug, *keepAlive, query); err != nil {
		fmt.Fprintln(os.Stderr, "apiwire:", err)
		os.Exit(1)
	}
}

func buildQuery(sql, database, python, executable, rawParams string) (envelope.Query, error) {
	set := 0
	for _, s := range []string{sql, python, executable} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return envelope.Query{}, fmt.Errorf("specify exactly one of -sql, -python, -executable")
	}

	params, err := parseParams(rawParams)
	if err != nil {
		return envelope.Query{}, err
	}

	switch {
	case sql != "":
		db, stmt := database, sql
		if db == "" {
			db, stmt = splitDatabasePrefix(sql)
		}
		return envelope.NewSQLQuery(db, stmt), nil
	case python != "":
		return envelope.NewPythonQuery(python, params), nil
	default:
		return envelope.NewExecutableQuery(executable, params), nil
	}
}

// splitDatabasePrefix splits a "-sql" value of the form "database:statement"
// into its two parts; a value with no ":" is treated as the statement with
// no database set.
func splitDatabasePrefix(s string) (database, statement string) {
	for i := range len(s) {
		if s[i] == ':' {
			return s[:i], s[i+1:]
		}
	}
	return "", s
}

func parseParams(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var params map[string]any
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, fmt.Errorf("parse -params: %w", err)
	}
	return params, nil
}

func run(addr, configPath, authToken string, timeout time.Duration, debug, keepAlive bool, query envelope.Query) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Address = addr
	if authToken != "" {
		cfg.AuthToken = authToken
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}

	c := client.New(client.Config{
		Address:        cfg.Address,
		AuthToken:      cfg.AuthToken,
		Timeout:        cfg.Timeout,
		SynByte:        cfg.SynByte,
		ReadBufferSize: cfg.ReadBufferSize,
		MaxFrameSize:   cfg.MaxFrameSize,
	})
	defer func() { _ = c.Close() }()

	c.SetDebug(debug)
	reply, err := c.FetchWith(query, keepAlive)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if reply.HasError() {
		return fmt.Errorf("server error: %s", reply.Error.Message)
	}

	out, err := json.MarshalIndent(reply.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
