package main

import "github.com/linhlhq/unollvm/cmd"

func main() {
	cmd.Execute()
}
