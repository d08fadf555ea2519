package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/QuackbackIO/quackback-sub007/tools/linters/enumvalidator"
)

func main() {
	singlechecker.Main(enumvalidator.Analyzer)
}
