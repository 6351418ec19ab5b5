package main

import "github.com/seifhelal/storefront/cmd"

func main() {
	cmd.Start()
}
