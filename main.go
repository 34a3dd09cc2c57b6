package main

import "wakelight/cmd"

func main() {
	cmd.Execute()
}
