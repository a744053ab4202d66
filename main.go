package main

import "github.com/iksnae/knowledge-console/cmd"

func main() {
	cmd.Execute()
}
