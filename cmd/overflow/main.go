// Command overflow packs section shortfalls into as few overflow days as possible.
package main

import (
	"os"

	"github.com/rhyrak/term-scheduler/internal/pipeline"
)

func main() {
	os.Exit(pipeline.Main(pipeline.StageOverflow))
}
