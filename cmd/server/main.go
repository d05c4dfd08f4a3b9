package main

import "github.com/eventregistry/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
