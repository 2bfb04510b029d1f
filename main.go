// Command flowstate measures calendar fragmentation and coding rhythm.
package main

import (
	_ "time/tzdata" // user timezones must resolve on hosts without zoneinfo

	"github.com/huangsam/flowstate/cmd"
	"github.com/huangsam/flowstate/internal/contract"
)

func main() {
	err := cmd.Execute()
	cmd.Shutdown()
	if err != nil {
		contract.LogFatal("Error", err)
	}
}
