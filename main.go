package main

import "github.com/leakhound/leakhound/cmd/leakhound"

func main() { leakhound.Execute() }
