package main

import "floorplan-sync/cmd"

func main() {
	cmd.Execute()
}
