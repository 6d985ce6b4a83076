package main

import (
	"log"

	"github.com/okatenko/prepflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
