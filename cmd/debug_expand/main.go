package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"calblock/core/calendar"
	"calblock/feature/caldav"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: debug_expand <file.ics> [days]")
	}

	days := 30
	if len(os.Args) > 2 {
		d, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatal(err)
		}
		days = d
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	window := calendar.NewWindow(calendar.StartOfDay(time.Now()), days)

	logg, _ := zap.NewDevelopment()
	events, err := caldav.ExpandICS(f, window, logg)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("=== %d occurrences between %s and %s ===\n",
		len(events),
		window.Start.Format("2006-01-02"),
		window.End.Format("2006-01-02"),
	)
	for _, ev := range events {
		tag := ""
		if ev.IsBlocker() {
			tag = "  tag=" + ev.CorrelationTag
		}
		fmt.Printf("%s  %s - %s  %q%s\n",
			ev.SourceID,
			ev.Start.Format(time.RFC3339),
			ev.End.Format(time.RFC3339),
			ev.Subject,
			tag,
		)
	}
}
