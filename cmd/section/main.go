// Command section splits oversubscribed courses into capacity-bounded sections.
package main

import (
	"os"

	"github.com/rhyrak/term-scheduler/internal/pipeline"
)

func main() {
	os.Exit(pipeline.Main(pipeline.StageSection))
}
