package main

import "github.com/bramford/steprunner/cmd/steprunner/internal"

func main() {
	internal.Execute()
}
