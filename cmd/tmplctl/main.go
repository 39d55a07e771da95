package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tmplworks/tmpl/internal/config"
	"github.com/tmplworks/tmpl/internal/daemon"
)

func main() {
	socketPath := flag.String("socket", "", "Daemon socket path (default: ~/.tmpl/daemon.sock)")
	timeout := flag.Duration("timeout", 30*time.Second, "Call timeout")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: tmplctl [flags] <command> [json-params]")
		fmt.Fprintln(os.Stderr, "Commands: status, diagnose, config.get, config.set, results.recent, scan")
		os.Exit(2)
	}

	method := args[0]
	var params any
	if len(args) > 1 {
		if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
			fatalf("Invalid params JSON: %v", err)
		}
	}

	socket := *socketPath
	if socket == "" {
		socket = config.Load().SocketPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := daemon.Dial(ctx, socket)
	if err != nil {
		fatalf("Failed to connect to daemon: %v", err)
	}
	defer client.Close()

	var result json.RawMessage
	if err := client.Call(ctx, method, params, &result); err != nil {
		fatalf("%v", err)
	}

	var pretty any
	if err := json.Unmarshal(result, &pretty); err == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Println(string(result))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
