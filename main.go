package main

import "github.com/hexlake/cir/cmd"

func main() {
	cmd.Execute()
}
