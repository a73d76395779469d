package main

import "github.com/edi-app/edi-intake/cmd"

func main() {
	cmd.Execute()
}
