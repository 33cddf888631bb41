package main

import "github.com/sentinela-io/sentinela/cmd"

func main() {
	cmd.Execute()
}
