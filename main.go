package main

import "github.com/dimasma0305/edmcli/cmd"

func main() {
	cmd.Execute()
}
