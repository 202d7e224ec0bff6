package main

import "certifyrpg/internal/cli"

func main() {
	cli.Execute()
}
