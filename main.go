package main

import "github.com/tanq16/driveloader/cmd"

func main() {
	cmd.Execute()
}
