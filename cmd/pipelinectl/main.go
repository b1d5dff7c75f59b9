package main

import "github.com/kbukum/pipelinekit/cmd/pipelinectl/internal/command"

func main() {
	command.Execute()
}
