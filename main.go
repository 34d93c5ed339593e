package main

import (
	"fmt"

	"github.com/Jeremy-Pacheco/AWTC-sub000/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		fmt.Println(err.Error())
		return
	}
}
