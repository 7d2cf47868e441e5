// Command normalize normalizes the roster export into course, student and enrollment tables.
package main

import (
	"os"

	"github.com/rhyrak/term-scheduler/internal/pipeline"
)

func main() {
	os.Exit(pipeline.Main(pipeline.StageNormalize))
}
