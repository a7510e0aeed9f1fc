package main

import "github.com/estesp/proclog/cmd"

func main() {
	cmd.Execute()
}
