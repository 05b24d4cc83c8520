package main

import (
	"github.com/tanpawarit/goodfoods-agent/cmd"
	_ "github.com/tanpawarit/goodfoods-agent/pkg/logger/autoload"
)

func main() {
	cmd.Execute()
}
