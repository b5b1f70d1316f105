package main

import "gophtasks/cmd/client/cmd"

func main() {
	cmd.Execute()
}
