package main

import (
	"fmt"
	"os"

	"huntboard/internal/ipc"
)

func main() {
	cmd := "status"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	reply, err := ipc.SendCommand(cmd)
	if err != nil {
		fmt.Println("huntboardd not running:", err)
		os.Exit(1)
	}

	if reply.Error != "" {
		fmt.Println("error:", reply.Error)
		os.Exit(1)
	}

	if len(reply.Status) > 0 {
		fmt.Println(string(reply.Status))
		return
	}
	fmt.Println("ok")
}
