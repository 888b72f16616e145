package main

import "github.com/ayourtch/fabricsim/cmd"

func main() {
	cmd.Execute()
}
