package main

import "github.com/mkravchuk/telecore/cmd/ringsim/cmd"

func main() {
	cmd.Execute()
}
