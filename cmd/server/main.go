package main

import "newsdesk/internal/cli"

func main() {
	cli.Execute()
}
