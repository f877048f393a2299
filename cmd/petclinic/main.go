package main

import "petclinic/internal/cli"

func main() {
	cli.Execute()
}
