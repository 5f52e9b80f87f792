// Command ct-events builds Cape Town event calendars and scrapes event dates.
package main

import (
	_ "time/tzdata"

	"github.com/pfrederiksen/capetown-events/internal/cli"
)

func main() {
	cli.Execute()
}
