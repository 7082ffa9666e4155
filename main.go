package main

import "api-test-ai/cmd"

func main() {
	cmd.Execute()
}
