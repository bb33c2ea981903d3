package main

import (
	"github.com/pthm-cable/replicants/cmd"
)

func main() {
	cmd.Execute()
}
