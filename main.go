package main

import "github.com/junaidrashid-git/restaurant-api/cmd"

func main() {
	cmd.Execute()
}
