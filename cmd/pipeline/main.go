// Command pipeline runs every stage in order.
package main

import (
	"os"

	"github.com/rhyrak/term-scheduler/internal/pipeline"
)

func main() {
	os.Exit(pipeline.Main(pipeline.StageAll))
}
