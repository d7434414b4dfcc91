package main

import "github.com/Tiliavir/work-time-logger/cmd"

func main() {
	cmd.Execute()
}
