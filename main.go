package main

import "github.com/metraction/ncconf/cmd"

func main() {
	cmd.Execute()
}
