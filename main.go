package main

import "github.com/mj1618/winmatch/cmd"

func main() {
	cmd.Execute()
}
