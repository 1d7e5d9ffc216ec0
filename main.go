package main

import "github.com/carismo/shopmail/cmd"

func main() {
	cmd.Execute()
}
