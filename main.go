package main

import "github.com/Wilian-lab/industrial-kpi-analyzer/cmd"

func main() {
	cmd.Execute()
}
