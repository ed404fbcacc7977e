package main

import "github.com/diogo/roomchat/internal/commands"

func main() {
	commands.Execute()
}
