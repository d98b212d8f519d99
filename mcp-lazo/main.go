// Command mcp-lazo serves a persistent Lazo session over MCP on stdio.
package main

import (
	"bytes"
	"os"
	"strings"

	"github.com/jcgregorio/logger"
	"github.com/mark3labs/mcp-go/server"

	"github.com/KajizukaTaichi/lazo/config"
	lazo "github.com/KajizukaTaichi/lazo/core"
	sqlite "github.com/KajizukaTaichi/lazo/mod-sqlite"
	timemod "github.com/KajizukaTaichi/lazo/mod-time"
	"github.com/KajizukaTaichi/lazo/session"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		logger.NewFromOptions(&logger.Options{SyncWriter: os.Stderr}).Fatalf("config: %s", err)
	}
	// stdout carries the protocol, so logs go to stderr.
	log := logger.NewFromOptions(&logger.Options{SyncWriter: os.Stderr, IncludeDebug: cfg.Verbose})

	var modules []map[string]lazo.Builtin
	if cfg.HasModule("sqlite") {
		db := sqlite.New(log)
		defer db.Close()
		modules = append(modules, db.Builtins())
	}
	if cfg.HasModule("time") {
		modules = append(modules, timemod.New().Builtins())
	}

	// Lazo programs must not read or write the protocol stream, nor end the server.
	out := &bytes.Buffer{}
	host := lazo.NewHost(strings.NewReader(""), out, func(code int) {
		log.Warningf("ignoring (exit %d) from a tool call", code)
	})
	s := session.New(
		session.WithHost(host),
		session.WithLogger(log),
		session.WithMode(session.Stop),
		session.WithModules(modules...),
		session.WithMaxTraces(cfg.MaxTraces),
	)
	actor := session.NewActor(s)
	defer actor.Close()

	srv := server.NewMCPServer(
		"lazo",
		lazo.Version,
		server.WithToolCapabilities(false),
	)
	t := &tools{actor: actor, out: out}
	t.register(srv)

	log.Infof("serving lazo %s on stdio", lazo.Version)
	if err := server.ServeStdio(srv); err != nil {
		log.Errorf("server error: %s", err)
		os.Exit(1)
	}
}
