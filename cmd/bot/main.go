package main

import (
	"github.com/alibestprice/price-bot/cmd"
)

func main() {
	cmd.Execute()
}
