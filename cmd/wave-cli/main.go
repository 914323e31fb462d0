package main

import (
	"voxwave-backend/cmd/wave-cli/commands"
	"voxwave-backend/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
