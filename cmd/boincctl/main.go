// boincctl runs one GUI RPC operation against a compute daemon and
// prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/danmuck/boincctl/internal/client"
	"github.com/danmuck/boincctl/internal/logging"
	"github.com/danmuck/boincctl/internal/models"
)

const usage = `usage: boincctl [flags] <command> [args]

commands:
  version [major minor release]      exchange versions with the daemon
  host-info                          daemon host hardware and OS
  projects                           all-projects list
  messages [seqno]                   daemon messages after seqno
  tasks                              all task results
  active-tasks                       currently-active task results
  acct-mgr-info                      attached account manager
  acct-mgr-attach <url> <name> <pw>  start an account manager attach
  acct-mgr-poll                      poll attach status
  set-mode <cpu|gpu|network> <always|auto|never|restore> [seconds]
  set-language <lang>

flags:
`

func main() {
	logging.ConfigureRuntime()

	var f endpointFlags
	var timeout time.Duration
	flag.StringVar(&f.configPath, "config", "", "endpoint TOML file")
	flag.StringVar(&f.host, "host", "", "daemon host")
	flag.IntVar(&f.port, "port", 0, "daemon GUI RPC port")
	flag.StringVar(&f.password, "passwd", "", "GUI RPC password")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "operation deadline")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ep, err := resolveEndpoint(f)
	if err != nil {
		fatal(err)
	}

	c := client.Dial(ep)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := run(ctx, c, args[0], args[1:])
	if err != nil {
		fatal(err)
	}
	if out != nil {
		encoded, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			fatal(err)
		}
		fmt.Println(string(encoded))
	}
}

func run(ctx context.Context, c *client.Client, command string, args []string) (any, error) {
	switch command {
	case "version":
		info := models.VersionInfo{Major: models.Int(8), Minor: models.Int(1), Release: models.Int(0)}
		if len(args) == 3 {
			var err error
			if info, err = parseVersion(args); err != nil {
				return nil, err
			}
		}
		return c.ExchangeVersions(ctx, info)
	case "host-info":
		return c.GetHostInfo(ctx)
	case "projects":
		return c.GetProjects(ctx)
	case "messages":
		seqno := int64(0)
		if len(args) == 1 {
			v, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("boincctl: bad seqno %q: %w", args[0], err)
			}
			seqno = v
		}
		return c.GetMessages(ctx, seqno)
	case "tasks":
		return c.GetResults(ctx, false)
	case "active-tasks":
		return c.GetResults(ctx, true)
	case "acct-mgr-info":
		return c.GetAccountManagerInfo(ctx)
	case "acct-mgr-attach":
		if len(args) != 3 {
			return nil, fmt.Errorf("boincctl: acct-mgr-attach needs <url> <name> <password>")
		}
		success, err := c.ConnectToAccountManager(ctx, args[0], args[1], args[2])
		if err != nil {
			return nil, err
		}
		return map[string]bool{"accepted": success}, nil
	case "acct-mgr-poll":
		code, err := c.GetAccountManagerRPCStatus(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]int{"error_num": code}, nil
	case "set-mode":
		if len(args) < 2 {
			return nil, fmt.Errorf("boincctl: set-mode needs <component> <mode> [seconds]")
		}
		component, err := parseComponent(args[0])
		if err != nil {
			return nil, err
		}
		mode, err := parseRunMode(args[1])
		if err != nil {
			return nil, err
		}
		duration := 0.0
		if len(args) == 3 {
			if duration, err = strconv.ParseFloat(args[2], 64); err != nil {
				return nil, fmt.Errorf("boincctl: bad duration %q: %w", args[2], err)
			}
		}
		return nil, c.SetMode(ctx, component, mode, duration)
	case "set-language":
		if len(args) != 1 {
			return nil, fmt.Errorf("boincctl: set-language needs <lang>")
		}
		return nil, c.SetLanguage(ctx, args[0])
	default:
		return nil, fmt.Errorf("boincctl: unknown command %q", command)
	}
}

func parseVersion(args []string) (models.VersionInfo, error) {
	var parts [3]int64
	for i, raw := range args {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return models.VersionInfo{}, fmt.Errorf("boincctl: bad version part %q: %w", raw, err)
		}
		parts[i] = v
	}
	return models.VersionInfo{
		Major:   models.Int(parts[0]),
		Minor:   models.Int(parts[1]),
		Release: models.Int(parts[2]),
	}, nil
}

func parseComponent(raw string) (models.Component, error) {
	switch raw {
	case "cpu":
		return models.ComponentCPU, nil
	case "gpu":
		return models.ComponentGPU, nil
	case "network":
		return models.ComponentNetwork, nil
	default:
		return 0, fmt.Errorf("boincctl: unknown component %q", raw)
	}
}

func parseRunMode(raw string) (models.RunMode, error) {
	switch raw {
	case "always":
		return models.RunModeAlways, nil
	case "auto":
		return models.RunModeAuto, nil
	case "never":
		return models.RunModeNever, nil
	case "restore":
		return models.RunModeRestore, nil
	default:
		return 0, fmt.Errorf("boincctl: unknown run mode %q", raw)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "boincctl: %v\n", err)
	os.Exit(1)
}
