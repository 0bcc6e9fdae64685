package main

import "github.com/inex/cerb5-to-zendesk/cmd"

func main() {
	cmd.Execute()
}
