// Swatchbook - CMYK print recipes for screen colours
//
// Swatchbook converts hex colours into standard and print-corrected CMYK
// recipes, asking a Google Gen AI model when configured and falling back to
// built-in rules otherwise.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"github.com/jmylchreest/swatchbook/internal/cli"
)

func main() {
	cli.Execute()
}
