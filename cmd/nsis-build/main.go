package main

import "github.com/oshokin/nsis-build/cmd/nsis-build/cmd"

func main() {
	cmd.Execute()
}
