package main

import "calblock/cmd"

func main() {
	cmd.Execute()
}
