package main

import (
	"meeting-summarizer/cmd/msum/cmd"
)

func main() {
	cmd.Execute()
}
