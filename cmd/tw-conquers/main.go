package main

import "github.com/pfrederiksen/tw-conquers/internal/cli"

func main() {
	cli.Execute()
}
