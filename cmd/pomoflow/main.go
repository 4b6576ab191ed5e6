package main

import "github.com/xvierd/pomoflow/cmd"

func main() {
	cmd.Execute()
}
