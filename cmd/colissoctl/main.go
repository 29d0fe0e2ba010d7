package main

import "github.com/dmitrijs2005/colisso/internal/ctl"

func main() {
	ctl.Execute()
}
