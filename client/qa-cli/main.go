package main

import "llm_relay/client/qa-cli/cmd"

func main() {
	cmd.Execute()
}
