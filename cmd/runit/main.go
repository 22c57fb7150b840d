package main

import "github.com/qobs-build/buildit/cmd"

func main() {
	cmd.ExecuteRun()
}
