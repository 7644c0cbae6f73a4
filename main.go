package main

import "github.com/mkadlec/facematch/cmd"

func main() {
	cmd.Execute()
}
