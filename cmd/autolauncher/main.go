package main

import "github.com/mirandabohm/Auto-Launcher/internal/cli"

func main() {
	cli.Execute()
}
