package main

import (
	"bufio"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/tomz197/swarm/internal/loop"
	"github.com/tomz197/swarm/internal/loop/config"
)

func main() {
	cfg, err := config.SimConfig()
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		log.Fatal("failed to enable raw mode", "err", err)
	}

	reader := bufio.NewReader(os.Stdin)
	runErr := loop.Run(reader, os.Stdout, cfg)
	_ = term.Restore(fd, oldState)

	if runErr != nil {
		log.Fatal("swarm stopped", "err", runErr)
	}
}
