package main

import "github.com/LumeAnalytics/safralens-cli/cmd"

func main() {
	cmd.Execute()
}
