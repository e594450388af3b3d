package main

import "github.com/edp1096/piline/cmd/pisim/cmd"

func main() {
	cmd.Execute()
}
