// Command calendar builds the primary slot table and the overflow day pool.
package main

import (
	"os"

	"github.com/rhyrak/term-scheduler/internal/pipeline"
)

func main() {
	os.Exit(pipeline.Main(pipeline.StageCalendar))
}
