package main

import (
	"github.com/fieldcalc/fieldcalc/cmd"
)

func main() {
	cmd.Execute()
}
