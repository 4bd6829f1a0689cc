package main

import "github.com/MeKo-Tech/docoutline/cmd/docoutline/cmd"

func main() {
	cmd.Execute()
}
