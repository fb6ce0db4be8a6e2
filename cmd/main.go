package main

import (
	"chatrelay/internal/cmd"
)

func main() {
	cmd.Run()
}
