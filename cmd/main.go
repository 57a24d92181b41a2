package main

import "invoice_recorder/internal/cli"

func main() {
	cli.Execute()
}
