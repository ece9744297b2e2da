package main

import "kanade/cmd"

func main() {
	cmd.Execute()
}
