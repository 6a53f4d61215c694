package main

import "github.com/mkravchuk/telecore/cmd/callpeerd/cmd"

func main() {
	cmd.Execute()
}
