// Package main runs the studyd agenda browser and its import/export modes.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	studydcmd "github.com/sandeepkv93/studyd/internal/cmd/studyd"
)

func main() {
	cfg, err := studydcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[STUDYD] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := studydcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("studyd failed: %v", err)
	}
}
