// Command assign assigns section sessions to term slots and exports the term schedule.
package main

import (
	"os"

	"github.com/rhyrak/term-scheduler/internal/pipeline"
)

func main() {
	os.Exit(pipeline.Main(pipeline.StageAssign))
}
