package main

import "project-manager/cmd"

func main() {
	cmd.Execute()
}
