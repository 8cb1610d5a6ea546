package main

import "github.com/fwselect/fwselect-cli/cmd"

func main() {
	cmd.Execute()
}
