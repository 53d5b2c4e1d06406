package main

import "github.com/insightdelivered/statement-tables/cmd"

func main() {
	cmd.Execute()
}
