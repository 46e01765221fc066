package main

import (
	"github.com/feedbridge/feedbridge/cmd"
)

func main() {
	cmd.Execute()
}
