package main

import "mic/cli"

func main() {
	cli.Execute()
}
