package main

import "github.com/candid-forum/candid/internal/cli"

func main() {
	cli.Execute()
}
