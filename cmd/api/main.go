package main

import "github.com/Dan9191/recurring-service/internal/cli"

func main() {
	cli.Execute()
}
