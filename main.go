package main

import (
	"os"

	"realestate-bi/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
