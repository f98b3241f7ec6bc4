package main

import "github.com/kozaktomas/facegroup/cmd"

func main() {
	cmd.Execute()
}
