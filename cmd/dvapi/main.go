package main

import "github.com/vuhung16au/DVAPI/pkg/cli"

func main() {
	cli.Execute()
}
