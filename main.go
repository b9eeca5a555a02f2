package main

import "pacs-index-api/cmd"

func main() {
	cmd.Execute()
}
