package main

import "github.com/keroloshany47/retail-etl/cmd"

func main() {
	cmd.Execute()
}
