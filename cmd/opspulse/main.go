package main

import "opspulse/cmd/opspulse/cmd"

func main() {
	cmd.Execute()
}
