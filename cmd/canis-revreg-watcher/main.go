package main

import (
	"github.com/scoir/canis-revreg/pkg/watcher/cmd"
)

func main() {
	cmd.Execute()
}
