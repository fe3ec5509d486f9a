package main

import "github.com/mvp-joe/project-lexis/internal/cli"

func main() {
	cli.Execute()
}
